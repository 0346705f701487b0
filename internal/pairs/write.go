package pairs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WritePulldown writes one AlphaPulldown line per fragment pair, in the form
// "ACC1,start-end;ACC2,start-end" with 1-indexed inclusive coordinates.
// It returns the number of lines written.
func WritePulldown(w io.Writer, pairs []Pair) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for _, pair := range pairs {
		for _, fp := range FragmentPairs(pair) {
			if _, err := fmt.Fprintf(bw, "%s,%d-%d;%s,%d-%d\n",
				fp.A.AccessionID, fp.FragA.Start+1, fp.FragA.End+1,
				fp.B.AccessionID, fp.FragB.Start+1, fp.FragB.End+1); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, bw.Flush()
}

// WriteFASTA creates a folder per protein pair under dir holding one FASTA
// file per fragment pair. Each file contains a single record whose sequence
// is the two fragments joined by ':'. It returns the paths written.
func WriteFASTA(dir string, pairs []Pair) ([]string, error) {
	var written []string
	for _, pair := range pairs {
		folder := filepath.Join(dir, pair.A.Name+"_"+pair.B.Name)
		if err := os.MkdirAll(folder, 0755); err != nil {
			return written, fmt.Errorf("create pair directory: %w", err)
		}

		for _, fp := range FragmentPairs(pair) {
			name := fmt.Sprintf("%s_F%d+%s_F%d", fp.A.Name, fp.IndexA, fp.B.Name, fp.IndexB)
			path := filepath.Join(folder, name+".fasta")
			content := fmt.Sprintf(">%s\n%s:%s\n", name,
				fp.A.FragmentSequence(fp.FragA), fp.B.FragmentSequence(fp.FragB))
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return written, fmt.Errorf("write fasta: %w", err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}
