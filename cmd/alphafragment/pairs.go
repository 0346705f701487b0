package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/alphafragment/internal/duckdb"
	"github.com/inodb/alphafragment/internal/pairs"
	"github.com/inodb/alphafragment/internal/protein"
	"github.com/inodb/alphafragment/internal/records"
)

type pairsFlags struct {
	format       string
	method       string
	target       string
	combinations string
	outPath      string
	outDir       string
	fromDB       string
}

func newPairsCmd() *cobra.Command {
	var pf pairsFlags

	cmd := &cobra.Command{
		Use:   "pairs <input>",
		Short: "Write fragment pairs for pairwise structure prediction",
		Long: `Read a fragmented records table and write every fragment pair of the selected
protein pairs, either as an AlphaPulldown list (one "ACC,start-end;ACC,start-end"
line per pair) or as one FASTA file per pair.

Proteins are read from a fragmented table, or with --from-db from a DuckDB
file written by "fragment --db".`,
		Example: `  alphafragment pairs fragmented.tsv -o pulldown.txt
  alphafragment pairs --method one --protein KRAS fragmented.tsv
  alphafragment pairs --from-db runs.duckdb -o pulldown.txt
  alphafragment pairs --format fasta --out-dir fasta/ --method specific --combinations combos.csv fragmented.tsv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return runPairs(cmd.OutOrStdout(), input, pf, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&pf.format, "format", "pulldown", "Output format: pulldown, fasta")
	f.StringVar(&pf.method, "method", "all", "Pairing method: all, one, specific")
	f.StringVar(&pf.target, "protein", "", "Target protein name for --method one")
	f.StringVar(&pf.combinations, "combinations", "", "Two-column CSV of protein names for --method specific")
	f.StringVarP(&pf.outPath, "output", "o", "", "Pulldown output file (default: stdout)")
	f.StringVar(&pf.outDir, "out-dir", "", "Directory for FASTA output")
	f.StringVar(&pf.fromDB, "from-db", "", "Read proteins and fragments from a DuckDB file instead of a table")

	return cmd
}

func runPairs(stdout io.Writer, inputPath string, pf pairsFlags, logger *zap.Logger) error {
	method, err := pairs.ParseMethod(pf.method)
	if err != nil {
		return err
	}
	if pf.format != "pulldown" && pf.format != "fasta" {
		return fmt.Errorf("unknown output format %q (use pulldown or fasta)", pf.format)
	}
	if pf.format == "fasta" && pf.outDir == "" {
		return fmt.Errorf("--out-dir is required for fasta output")
	}

	sel := pairs.Selection{Method: method, Target: pf.target}
	if method == pairs.MethodSpecific {
		if pf.combinations == "" {
			return fmt.Errorf("method 'specific' selected but no --combinations file specified")
		}
		f, err := os.Open(pf.combinations)
		if err != nil {
			return fmt.Errorf("open combinations: %w", err)
		}
		sel.Specific, err = pairs.ReadSpecific(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	var proteins []*protein.Protein
	switch {
	case inputPath != "" && pf.fromDB != "":
		return fmt.Errorf("give either an input table or --from-db, not both")
	case pf.fromDB != "":
		proteins, err = loadProteins(pf.fromDB)
	case inputPath != "":
		proteins, err = readProteins(inputPath, logger)
	default:
		return fmt.Errorf("an input table or --from-db is required")
	}
	if err != nil {
		return err
	}

	selected, skipped, err := pairs.Combinations(proteins, sel)
	if err != nil {
		return err
	}
	for _, msg := range skipped {
		logger.Warn(msg)
	}

	if pf.format == "fasta" {
		paths, err := pairs.WriteFASTA(pf.outDir, selected)
		if err != nil {
			return err
		}
		logger.Info("wrote fasta files", zap.Int("pairs", len(selected)), zap.Int("files", len(paths)))
		return nil
	}

	out := stdout
	if pf.outPath != "" {
		f, err := os.Create(pf.outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	n, err := pairs.WritePulldown(out, selected)
	if err != nil {
		return fmt.Errorf("writing pulldown list: %w", err)
	}
	logger.Info("wrote pulldown list", zap.Int("pairs", len(selected)), zap.Int("lines", n))
	return nil
}

// readProteins loads the proteins of a fragmented table. Proteins without
// fragments contribute no pairs and are reported.
func readProteins(path string, logger *zap.Logger) ([]*protein.Protein, error) {
	reader, err := records.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	recs, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	out := make([]*protein.Protein, 0, len(recs))
	for _, rec := range recs {
		if len(rec.Protein.Fragments()) == 0 {
			logger.Warn("protein has no fragments", zap.String("protein", rec.Protein.Name))
		}
		out = append(out, rec.Protein)
	}
	return out, nil
}

// loadProteins loads every stored protein with its domains and fragments.
func loadProteins(dbPath string) ([]*protein.Protein, error) {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	names, err := store.ProteinNames()
	if err != nil {
		return nil, err
	}
	out := make([]*protein.Protein, 0, len(names))
	for _, name := range names {
		p, err := store.LoadProtein(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
