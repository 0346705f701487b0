// Package pairs builds protein pairings and writes the fragment-pair inputs
// for pairwise structure prediction.
package pairs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/inodb/alphafragment/internal/protein"
)

// Method selects which protein pairs are generated.
type Method string

const (
	// MethodAll pairs every protein with every other protein and itself.
	MethodAll Method = "all"
	// MethodOne pairs a single target protein with every protein.
	MethodOne Method = "one"
	// MethodSpecific pairs only the listed combinations.
	MethodSpecific Method = "specific"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(s)); m {
	case MethodAll, MethodOne, MethodSpecific:
		return m, nil
	}
	return "", fmt.Errorf("method must be 'all', 'one', or 'specific', got %q", s)
}

// Pair is an ordered pair of proteins.
type Pair struct {
	A, B *protein.Protein
}

// Selection describes which pairs to build.
type Selection struct {
	Method Method
	// Target names the protein for MethodOne.
	Target string
	// Specific lists name pairs for MethodSpecific.
	Specific [][2]string
}

// Combinations builds the selected pairs, sorted by the names of both
// proteins. For MethodSpecific, combinations naming unknown proteins are
// skipped and returned as messages.
func Combinations(proteins []*protein.Protein, sel Selection) ([]Pair, []string, error) {
	var out []Pair
	var skipped []string

	switch sel.Method {
	case MethodAll:
		for i := range proteins {
			for j := i + 1; j < len(proteins); j++ {
				out = append(out, Pair{proteins[i], proteins[j]})
			}
		}
		for _, p := range proteins {
			out = append(out, Pair{p, p})
		}

	case MethodOne:
		if sel.Target == "" {
			return nil, nil, errors.New("method 'one' selected but no target protein specified")
		}
		var target *protein.Protein
		for _, p := range proteins {
			if p.Name == sel.Target {
				target = p
				break
			}
		}
		if target == nil {
			return nil, nil, fmt.Errorf("protein named %s not found among the provided proteins", sel.Target)
		}
		for _, p := range proteins {
			out = append(out, Pair{target, p})
		}

	case MethodSpecific:
		byName := make(map[string]*protein.Protein, len(proteins))
		for _, p := range proteins {
			byName[p.Name] = p
		}
		for _, combo := range sel.Specific {
			a, okA := byName[combo[0]]
			b, okB := byName[combo[1]]
			if okA && okB {
				out = append(out, Pair{a, b})
				continue
			}
			var missing []string
			for _, name := range combo {
				if _, ok := byName[name]; !ok {
					missing = append(missing, name)
				}
			}
			skipped = append(skipped, fmt.Sprintf("combination %s-%s not possible, missing proteins: %s",
				combo[0], combo[1], strings.Join(missing, ", ")))
		}

	default:
		return nil, nil, fmt.Errorf("unknown method %q", sel.Method)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].A.Name != out[j].A.Name {
			return out[i].A.Name < out[j].A.Name
		}
		return out[i].B.Name < out[j].B.Name
	})
	return out, skipped, nil
}

// ReadSpecific reads a headerless two-column CSV of protein names. Rows with
// an empty name are ignored.
func ReadSpecific(r io.Reader) ([][2]string, error) {
	c := csv.NewReader(r)
	c.FieldsPerRecord = -1
	c.TrimLeadingSpace = true

	var out [][2]string
	for {
		row, err := c.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read combinations: %w", err)
		}
		if len(row) < 2 {
			continue
		}
		a, b := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if a == "" || b == "" {
			continue
		}
		out = append(out, [2]string{a, b})
	}
}

// FragmentPair is one combination of a fragment of A with a fragment of B.
// IndexA and IndexB are 1-based positions in the proteins' fragment lists.
type FragmentPair struct {
	A, B           *protein.Protein
	FragA, FragB   protein.Fragment
	IndexA, IndexB int
}

// FragmentPairs expands a protein pair into fragment pairs, skipping a
// combination already produced in the opposite order.
func FragmentPairs(pair Pair) []FragmentPair {
	type key struct{ a, b protein.Fragment }
	seen := make(map[key]bool)

	var out []FragmentPair
	for i, fa := range pair.A.Fragments() {
		for j, fb := range pair.B.Fragments() {
			if seen[key{fa, fb}] || seen[key{fb, fa}] {
				continue
			}
			seen[key{fa, fb}] = true
			out = append(out, FragmentPair{
				A: pair.A, B: pair.B,
				FragA: fa, FragB: fb,
				IndexA: i + 1, IndexB: j + 1,
			})
		}
	}
	return out
}
