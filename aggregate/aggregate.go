package aggregate

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/jaganthoutam/agentic-rag/core"
)

// Options configures a single aggregation pass.
type Options struct {
	// MaxAgents caps how many agent results participate. When more results
	// arrive than the cap allows, the highest-confidence subset is kept,
	// ties broken by agent id. 0 means unlimited.
	MaxAgents int

	// ConfidenceFloor drops agent results below this confidence before
	// fusion. If the floor would drop everything, the single best result
	// is kept instead so a step never silently loses all its evidence.
	ConfidenceFloor float64
}

// Aggregate fuses agent results into one AggregatedResult.
//
// The fusion is order-independent: results are first put into a canonical
// order (confidence descending, agent id ascending) so that any permutation
// of the input yields an identical output. Documents with the same
// normalized content are merged into one, accumulating provenance from every
// contributing agent. The combined confidence averages within each agent
// type first and then across types, so three agreeing web results do not
// outvote one independent local source.
func Aggregate(queryID string, results []*core.AgentResult, optFns ...func(o *Options)) *core.AggregatedResult {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	surviving := canonical(results)
	surviving = applyFloor(surviving, opts.ConfidenceFloor)

	if opts.MaxAgents > 0 && len(surviving) > opts.MaxAgents {
		surviving = surviving[:opts.MaxAgents]
	}

	agg := &core.AggregatedResult{
		QueryID:    queryID,
		Provenance: make(map[string][]string),
	}

	if len(surviving) == 0 {
		return agg
	}

	agg.Documents = fuseDocuments(surviving, agg.Provenance)
	agg.Confidence = diversityConfidence(surviving)
	agg.AgentTypes = distinctTypes(surviving)

	return agg
}

// canonical returns a defensive copy of results sorted by confidence
// descending, agent id ascending. Nil entries are skipped.
func canonical(results []*core.AgentResult) []*core.AgentResult {
	out := make([]*core.AgentResult, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].AgentID < out[j].AgentID
	})

	return out
}

func applyFloor(sorted []*core.AgentResult, floor float64) []*core.AgentResult {
	if floor <= 0 || len(sorted) == 0 {
		return sorted
	}

	kept := sorted[:0:0]
	for _, r := range sorted {
		if r.Confidence >= floor {
			kept = append(kept, r)
		}
	}

	if len(kept) == 0 {
		// Keep the best result rather than dropping all evidence.
		return sorted[:1]
	}

	return kept
}

// fuseDocuments merges duplicate documents across results and records
// provenance for each surviving document. The first occurrence in canonical
// order owns the document identity; later duplicates only contribute their
// agent id and confidence.
func fuseDocuments(sorted []*core.AgentResult, provenance map[string][]string) []*core.Document {
	type slot struct {
		doc   *core.Document
		conf  float64
		order int
	}

	slots := make(map[string]*slot)
	var keys []string

	for _, r := range sorted {
		for _, d := range r.Documents {
			if d == nil {
				continue
			}
			key := contentKey(d.Content)
			s, ok := slots[key]
			if !ok {
				s = &slot{doc: d, conf: r.Confidence, order: len(keys)}
				slots[key] = s
				keys = append(keys, key)
			}
			if r.Confidence > s.conf {
				s.conf = r.Confidence
			}
			provenance[s.doc.ID] = appendAgent(provenance[s.doc.ID], r.AgentID)
		}
	}

	ordered := make([]*slot, 0, len(keys))
	for _, key := range keys {
		ordered = append(ordered, slots[key])
	}

	// Highest supporting confidence first; first-seen order breaks ties.
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].conf != ordered[j].conf {
			return ordered[i].conf > ordered[j].conf
		}
		return ordered[i].order < ordered[j].order
	})

	docs := make([]*core.Document, len(ordered))
	for i, s := range ordered {
		docs[i] = s.doc
		sort.Strings(provenance[s.doc.ID])
	}

	return docs
}

func appendAgent(agents []string, id string) []string {
	for _, existing := range agents {
		if existing == id {
			return agents
		}
	}
	return append(agents, id)
}

// diversityConfidence averages confidences within each agent type and then
// across types, weighting independent source kinds equally no matter how
// many agents of one kind responded.
func diversityConfidence(results []*core.AgentResult) float64 {
	sums := make(map[core.Capability]float64)
	counts := make(map[core.Capability]int)

	for _, r := range results {
		sums[r.AgentType] += r.Confidence
		counts[r.AgentType]++
	}

	if len(sums) == 0 {
		return 0
	}

	var total float64
	for t, sum := range sums {
		total += sum / float64(counts[t])
	}

	return total / float64(len(sums))
}

func distinctTypes(results []*core.AgentResult) []core.Capability {
	seen := make(map[core.Capability]struct{})
	var types []core.Capability

	for _, r := range results {
		if _, ok := seen[r.AgentType]; ok {
			continue
		}
		seen[r.AgentType] = struct{}{}
		types = append(types, r.AgentType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// contentKey hashes normalized document content for duplicate detection.
// Normalization lowercases and collapses all whitespace runs so trivially
// reformatted copies of the same passage merge.
func contentKey(content string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(content), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
