// Command quote prices a cart snapshot from a JSON file (or stdin) against the
// configured roster and prints the ranking.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/noah-isme/chango-api/internal/compare"
	"github.com/noah-isme/chango-api/internal/config"
	"github.com/noah-isme/chango-api/internal/obs"
	"github.com/noah-isme/chango-api/internal/pricing"
	"github.com/noah-isme/chango-api/internal/quote"
)

func main() {
	input := flag.String("f", "-", "cart snapshot JSON file, - for stdin")
	asJSON := flag.Bool("json", false, "print the full quote as JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger("console", cfg.LogLevel)

	req, err := readRequest(*input)
	if err != nil {
		logger.Fatal().Err(err).Str("input", *input).Msg("read snapshot")
	}
	if err := quote.NewValidator().Struct(req); err != nil {
		logger.Fatal().Err(err).Msg("invalid snapshot")
	}

	svc, err := quote.NewService(quote.ServiceConfig{
		Roster: cfg.Roster,
		Options: compare.Options{
			Policy:              pricing.Policy{UnavailablePenalty: cfg.UnavailablePenalty},
			AvailabilityCeiling: cfg.AvailabilityCeiling,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise quote service")
	}
	q, err := svc.Quote(context.Background(), req)
	if err != nil {
		logger.Fatal().Err(err).Msg("compute quote")
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(q); err != nil {
			logger.Fatal().Err(err).Msg("encode quote")
		}
		return
	}
	printQuote(os.Stdout, q)
}

func readRequest(path string) (quote.Request, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return quote.Request{}, err
		}
		defer f.Close()
		r = f
	}
	var req quote.Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return quote.Request{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return req, nil
}

func printQuote(w io.Writer, q quote.Quote) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "STORE\tSUBTOTAL\tDISCOUNT\tTOTAL\tMISSING\t")
	for _, res := range q.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t\n",
			res.Store.Name,
			res.Subtotal.StringFixed(pricing.Precision),
			res.Discount.StringFixed(pricing.Precision),
			res.Total.StringFixed(pricing.Precision),
			res.Unavailable,
		)
	}
	_ = tw.Flush()
	if q.Best != nil {
		fmt.Fprintf(w, "\nbest: %s\n", q.Best.Store.Name)
	}
	if q.Advice != nil {
		if q.Advice.Owned != nil {
			fmt.Fprintf(w, "pay with: %s (%s off)\n", q.Advice.Owned.EntityName, percent(q.Advice.Owned.Rate))
		}
		if q.Advice.Recommend != nil {
			fmt.Fprintf(w, "consider: %s (%s off) %s\n", q.Advice.Recommend.EntityName, percent(q.Advice.Recommend.Rate), q.Advice.Recommend.ReferralLink)
		}
	}
}

func percent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}
