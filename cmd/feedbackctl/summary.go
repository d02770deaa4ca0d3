package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/goliatone/go-feedback-dashboard/components/dashboard"
	"github.com/goliatone/go-feedback-dashboard/components/dashboard/queries"
)

type summaryCmd struct {
	FilterFlags `embed:""`

	By  string `default:"branch" help:"Grouping for the negative ranking."`
	Top int    `default:"10" help:"Number of ranked groups to print (0 prints all)."`
}

func (cmd *summaryCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := newRuntime(ctx, g)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck
	sessionID, err := openFiltered(ctx, rt, cmd.FilterFlags)
	if err != nil {
		return err
	}
	defer rt.service.CloseSession(ctx, sessionID) //nolint:errcheck

	summary, err := queries.NewSummaryQuery(rt.service).Query(ctx, queries.SessionInput{SessionID: sessionID})
	if err != nil {
		return err
	}
	ranked, err := queries.NewAggregateQuery(rt.service).Query(ctx, queries.AggregateInput{
		SessionID: sessionID,
		Request:   dashboard.AggregateRequest{GroupBy: cmd.By, Rank: true, Limit: cmd.Top},
	})
	if err != nil {
		return err
	}
	return printSummary(os.Stdout, summary, ranked, rt.service.Labels())
}

func printSummary(w io.Writer, summary dashboard.Summary, ranked []dashboard.AggregateResult, labels dashboard.Labeler) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total\t%d\n", summary.Total)
	fmt.Fprintf(tw, "Positive\t%d\n", summary.Positive)
	fmt.Fprintf(tw, "Negative\t%d\n", summary.Negative)
	fmt.Fprintf(tw, "Neutral\t%d\n", summary.Neutral)

	dims := make([]string, 0, len(summary.SatisfactionAvg))
	for dim := range summary.SatisfactionAvg {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	for _, dim := range dims {
		fmt.Fprintf(tw, "Satisfaction %s\t%.2f (%d answers)\n", dim, summary.SatisfactionAvg[dim], summary.SatisfactionAnswer[dim])
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Group\tNegative\tPositive\tTotal")
	for _, g := range ranked {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", labels.Label(g.GroupKey), g.NegativeCount, g.PositiveCount, g.TotalCount)
	}
	return tw.Flush()
}
