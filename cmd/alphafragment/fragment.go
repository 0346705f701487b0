package main

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/alphafragment/internal/domains"
	"github.com/inodb/alphafragment/internal/duckdb"
	"github.com/inodb/alphafragment/internal/fragment"
	"github.com/inodb/alphafragment/internal/protein"
	"github.com/inodb/alphafragment/internal/records"
)

func newFragmentCmd() *cobra.Command {
	var (
		outPath string
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "fragment <input>",
		Short: "Fragment proteins from a records table",
		Long: `Read a TSV or CSV table of proteins, compile their domains from the enabled
sources, and split every protein into overlapping fragments that keep domains
whole. The table is written back with fragments and fragment sequences added.

Proteins that already carry fragments are passed through unchanged. An output
name ending in .gz is gzip-compressed.

With --db, proteins and fragments are also stored in DuckDB. Stored fragment
ledgers are append-only: re-running on a changed input fails for proteins that
already have stored fragments unless --replace is given.`,
		Example: `  alphafragment fragment proteins.tsv -o fragmented.tsv
  alphafragment fragment --domains-file pfam.tsv proteins.csv -o out.csv
  alphafragment fragment --db runs.duckdb proteins.tsv.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()
			return runFragment(cmd.OutOrStdout(), args[0], outPath, replace, logger)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&outPath, "output", "o", "", "Output file (default: stdout)")
	f.String("db", "", "DuckDB file to store proteins and fragments in")
	f.BoolVar(&replace, "replace", false, "Replace fragments already stored in --db for a changed input")
	f.String("domains-file", "", "Domain annotation TSV keyed by accession (enables the tsv source)")
	f.Int("workers", 0, "Number of parallel workers (0 = all CPUs)")
	_ = viper.BindPFlag("db", f.Lookup("db"))
	_ = viper.BindPFlag("domains_file", f.Lookup("domains-file"))
	_ = viper.BindPFlag("workers", f.Lookup("workers"))

	return cmd
}

func runFragment(stdout io.Writer, inputPath, outPath string, replace bool, logger *zap.Logger) error {
	opts, err := optionsFromConfig()
	if err != nil {
		return err
	}

	reader, err := records.NewReader(inputPath)
	if err != nil {
		return err
	}
	recs, err := reader.ReadAll()
	reader.Close()
	if err != nil {
		return err
	}

	registry, enabled, err := buildRegistry(recs, logger)
	if err != nil {
		return err
	}

	var pending []*protein.Protein
	for _, rec := range recs {
		p := rec.Protein
		ds, err := registry.Compile(p, enabled)
		if err != nil {
			return err
		}
		p.AddDomains(ds)
		if len(p.Fragments()) > 0 {
			logger.Info("protein already fragmented, keeping ledger", zap.String("protein", p.Name))
			continue
		}
		pending = append(pending, p)
	}

	fr, err := fragment.New(opts)
	if err != nil {
		return err
	}
	fr.SetLogger(logger)

	failed := 0
	for _, r := range fr.ApplyAll(pending, viper.GetInt("workers")) {
		if r.Err != nil {
			failed++
		}
	}

	if err := writeRecords(stdout, inputPath, outPath, reader.ExtraColumns(), recs); err != nil {
		return err
	}

	if dbPath := viper.GetString("db"); dbPath != "" {
		if err := storeRecords(dbPath, inputPath, recs, replace, logger); err != nil {
			return err
		}
	}

	logger.Info("fragmentation complete",
		zap.Int("proteins", len(recs)),
		zap.Int("fragmented", len(pending)-failed),
		zap.Int("failed", failed))

	if failed > 0 {
		return fmt.Errorf("%d of %d proteins could not be fragmented", failed, len(pending))
	}
	return nil
}

// buildRegistry registers the manual source from the table's domains column
// and, when enabled, the tsv source from the domains file.
func buildRegistry(recs []*records.Record, logger *zap.Logger) (*domains.Registry, []string, error) {
	registry := domains.NewRegistry()
	var enabled []string

	if viper.GetBool("sources.manual") {
		manual := domains.NewManual()
		for _, rec := range recs {
			manual.Add(rec.Protein.Name, rec.Domains)
		}
		registry.Register(manual)
		enabled = append(enabled, manual.Name())
	}

	domainsFile := viper.GetString("domains_file")
	if viper.GetBool("sources.tsv") || domainsFile != "" {
		if domainsFile == "" {
			return nil, nil, fmt.Errorf("tsv domain source enabled but no domains file set (--domains-file or domains_file)")
		}
		tsv, err := domains.LoadTSV(domainsFile)
		if err != nil {
			return nil, nil, err
		}
		registry.Register(tsv)
		enabled = append(enabled, tsv.Name())
		logger.Info("loaded domain file", zap.String("path", domainsFile), zap.Int("domains", tsv.Len()))
	}

	logger.Debug("domain sources",
		zap.Strings("registered", registry.Names()),
		zap.Strings("enabled", enabled))

	return registry, enabled, nil
}

func writeRecords(stdout io.Writer, inputPath, outPath string, extra []string, recs []*records.Record) error {
	if outPath == "" {
		return encodeRecords(stdout, records.Comma(inputPath), extra, recs)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outPath), ".gz") {
		if err := encodeRecords(f, records.Comma(outPath), extra, recs); err != nil {
			return err
		}
		return f.Close()
	}

	gz := gzip.NewWriter(f)
	if err := encodeRecords(gz, records.Comma(outPath), extra, recs); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compressing records: %w", err)
	}
	return f.Close()
}

func encodeRecords(out io.Writer, comma rune, extra []string, recs []*records.Record) error {
	bw := bufio.NewWriter(out)
	w := records.NewWriter(bw, comma, extra)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing %s: %w", rec.Protein.Name, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	return bw.Flush()
}

// storeRecords persists proteins and fragments. When the input file is
// unchanged since it was last stored, the stored fragments are kept.
// Otherwise a protein with stored fragments fails with
// protein.ErrFragmentOrder unless replace is set.
func storeRecords(dbPath, inputPath string, recs []*records.Record, replace bool, logger *zap.Logger) error {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var fp duckdb.FileFingerprint
	unchanged := false
	if inputPath != "-" {
		if fp, err = duckdb.StatFile(inputPath); err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
		prev, ok, err := store.LookupInput(inputPath)
		if err != nil {
			return err
		}
		unchanged = ok && prev.Matches(fp)
	}

	if unchanged {
		logger.Info("input unchanged since last run, keeping stored fragments",
			zap.String("input", inputPath), zap.String("db", dbPath))
		return nil
	}

	for _, rec := range recs {
		p := rec.Protein
		if err := store.WriteProtein(p); err != nil {
			return err
		}
		if replace {
			if err := store.ClearFragments(p.Name); err != nil {
				return fmt.Errorf("clear fragments of %s: %w", p.Name, err)
			}
		}
		if err := store.WriteFragments(p); err != nil {
			if errors.Is(err, protein.ErrFragmentOrder) {
				return fmt.Errorf("%w (use --replace to overwrite stored fragments)", err)
			}
			return err
		}
	}

	if inputPath != "-" {
		if err := store.RecordInput(fp, len(recs)); err != nil {
			return err
		}
	}
	logger.Info("stored fragments", zap.String("db", dbPath), zap.Int("proteins", len(recs)))
	return nil
}
