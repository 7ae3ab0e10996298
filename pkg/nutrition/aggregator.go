package nutrition

import "fmt"

// Tally counts detections per label and remembers the order in which labels
// were first seen.
type Tally struct {
	order  []string
	counts map[string]int
}

// Add adds n occurrences of label. Negative n is ignored.
func (t *Tally) Add(label string, n int) {
	if n < 0 {
		return
	}
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, ok := t.counts[label]; !ok {
		t.order = append(t.order, label)
	}
	t.counts[label] += n
}

func (t Tally) Count(label string) int {
	return t.counts[label]
}

func (t Tally) Len() int {
	return len(t.order)
}

func (t Tally) Labels() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Counts returns a copy of the per-label counts.
func (t Tally) Counts() map[string]int {
	out := make(map[string]int, len(t.counts))
	for label, n := range t.counts {
		out[label] = n
	}
	return out
}

type Aggregator struct {
	labels Labels
}

// NewAggregator returns an aggregator that names unlabelled detections from
// the given label space.
func NewAggregator(labels Labels) *Aggregator {
	return &Aggregator{labels: labels}
}

// Label names a class id from the aggregator's label space.
func (a *Aggregator) Label(classID int) string {
	return a.labels.Resolve(classID)
}

func (a *Aggregator) Tally(detections []Detection) Tally {
	var t Tally
	for _, d := range detections {
		label := d.Label
		if label == "" {
			label = a.labels.Resolve(d.ClassID)
		}
		t.Add(label, 1)
	}
	return t
}

func (a *Aggregator) Analyze(detections []Detection, c *Catalog) Result {
	return aggregate(a.Tally(detections), c)
}

func TallyDetections(detections []Detection) Tally {
	return (&Aggregator{}).Tally(detections)
}

// Aggregate scales each tallied label's profile by serving size and count
// and sums the contributions. Labels missing from the catalog add nothing to
// the totals but still get a summary entry.
func Aggregate(t Tally, c *Catalog) (Totals, []string) {
	r := aggregate(t, c)
	return r.Totals, r.Summaries
}

func Analyze(detections []Detection, c *Catalog) (Totals, []string) {
	return Aggregate(TallyDetections(detections), c)
}

func aggregate(t Tally, c *Catalog) Result {
	r := Result{Summaries: make([]string, 0, len(t.order))}
	for _, label := range t.order {
		count := t.counts[label]
		r.Summaries = append(r.Summaries, fmt.Sprintf("%dx%s", count, label))

		p, ok := c.Lookup(label)
		if !ok {
			r.Unscored = append(r.Unscored, label)
			continue
		}
		r.Totals = r.Totals.add(p.contribution(count))
	}
	return r
}

func (p Profile) contribution(count int) Totals {
	grams := p.StandardServingGrams * float64(count)
	return Totals{
		Calories: p.CaloriesPer100g / 100 * grams,
		Protein:  p.ProteinPer100g / 100 * grams,
		Carbs:    p.CarbsPer100g / 100 * grams,
		Fats:     p.FatsPer100g / 100 * grams,
		Grams:    grams,
	}
}
