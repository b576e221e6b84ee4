package split

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// holdout splits idx into (keep, held), holding out fraction of the rows.
// labels is indexed by row and may be nil for an unstratified split.
func holdout(idx []int, labels []string, fraction float64, seed int64) ([]int, []int, error) {
	n := len(idx)
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: no rows to split", ErrInsufficientData)
	}
	nHeld := HeldOutCount(n, fraction)
	nKeep := n - nHeld
	if nKeep <= 0 {
		return nil, nil, fmt.Errorf("%w: holding out %d of %d rows leaves none to train on", ErrInsufficientData, nHeld, n)
	}

	rng := newRand(seed)
	if labels == nil {
		perm := rng.Perm(n)
		held := make([]int, 0, nHeld)
		keep := make([]int, 0, nKeep)
		for i, p := range perm {
			if i < nHeld {
				held = append(held, idx[p])
			} else {
				keep = append(keep, idx[p])
			}
		}
		return keep, held, nil
	}

	strata := groupByLabel(idx, labels)
	for _, s := range strata {
		if len(s.rows) < 2 {
			return nil, nil, fmt.Errorf("%w: label %q has %d row(s), need at least 2 to stratify", ErrInsufficientData, s.label, len(s.rows))
		}
	}
	if nHeld > 0 && nHeld < len(strata) {
		return nil, nil, fmt.Errorf("%w: %d held-out rows cannot cover %d labels", ErrInsufficientData, nHeld, len(strata))
	}
	if nKeep < len(strata) {
		return nil, nil, fmt.Errorf("%w: %d remaining rows cannot cover %d labels", ErrInsufficientData, nKeep, len(strata))
	}

	alloc := allocate(strata, n, nHeld)
	held := make([]int, 0, nHeld)
	keep := make([]int, 0, nKeep)
	for i, s := range strata {
		rows := slices.Clone(s.rows)
		rng.Shuffle(len(rows), func(a, b int) { rows[a], rows[b] = rows[b], rows[a] })
		held = append(held, rows[:alloc[i]]...)
		keep = append(keep, rows[alloc[i]:]...)
	}
	rng.Shuffle(len(keep), func(a, b int) { keep[a], keep[b] = keep[b], keep[a] })
	rng.Shuffle(len(held), func(a, b int) { held[a], held[b] = held[b], held[a] })
	return keep, held, nil
}

type stratum struct {
	label string
	rows  []int
}

// groupByLabel buckets idx by label, ordering strata by label so the
// allocation does not depend on which label happens to appear first.
func groupByLabel(idx []int, labels []string) []stratum {
	byLabel := make(map[string][]int)
	for _, i := range idx {
		byLabel[labels[i]] = append(byLabel[labels[i]], i)
	}
	strata := make([]stratum, 0, len(byLabel))
	for label, rows := range byLabel {
		strata = append(strata, stratum{label: label, rows: rows})
	}
	slices.SortFunc(strata, func(a, b stratum) int { return cmp.Compare(a.label, b.label) })
	return strata
}

// allocate distributes nHeld across strata in proportion to their size.
// Each stratum gets the floor of its exact share; the leftover rows go to
// the largest fractional parts, ties broken by larger stratum then label.
func allocate(strata []stratum, n, nHeld int) []int {
	alloc := make([]int, len(strata))
	frac := make([]float64, len(strata))
	assigned := 0
	for i, s := range strata {
		exact := float64(len(s.rows)) * float64(nHeld) / float64(n)
		alloc[i] = int(math.Floor(exact + 1e-9))
		frac[i] = exact - float64(alloc[i])
		assigned += alloc[i]
	}

	order := make([]int, len(strata))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if c := cmp.Compare(frac[b], frac[a]); c != 0 {
			return c
		}
		if c := cmp.Compare(len(strata[b].rows), len(strata[a].rows)); c != 0 {
			return c
		}
		return cmp.Compare(strata[a].label, strata[b].label)
	})
	for _, i := range order {
		if assigned >= nHeld {
			break
		}
		if alloc[i] < len(strata[i].rows) {
			alloc[i]++
			assigned++
		}
	}
	return alloc
}
