package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/h0rv/polardash/internal/backoffice"
	"github.com/h0rv/polardash/internal/dashboard"
	"github.com/h0rv/polardash/internal/filters"
	"github.com/h0rv/polardash/internal/logging"
	"github.com/h0rv/polardash/internal/output"
	"github.com/h0rv/polardash/internal/prefs"
	"github.com/h0rv/polardash/internal/store"
)

var (
	jsonFlag  bool
	allFlag   bool
	limitFlag int
)

func formatter() *output.Formatter {
	if jsonFlag {
		return output.NewFormatter(output.FormatJSON)
	}
	return output.NewFormatter(output.FormatTable)
}

// cliEnv wires a non-interactive command, logging to stderr.
func cliEnv() (*env, context.Context, context.CancelFunc, error) {
	e, err := setup(logging.New(os.Stderr, debugFlag))
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	return e, ctx, cancel, nil
}

func newIssuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issues",
		Short: "List dashboard issues of an organization",
		Long: `List the issue dashboard of an organization with the filters of --url.

Examples:
  polardash issues --org polarsource
  polardash issues --url '?organization=polarsource&statuses=backlog&sort=pledged_amount_desc' --all --json`,
		Args: cobra.NoArgs,
		RunE: runIssues,
	}
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&allFlag, "all", false, "Fetch every page")
	cmd.Flags().IntVar(&limitFlag, "limit", -1, "Maximum issues to print. Defaults to page_size from the config; 0 prints all.")
	return cmd
}

func runIssues(cmd *cobra.Command, args []string) error {
	loc, err := location()
	if err != nil {
		return err
	}
	if loc.Organization == "" {
		return fmt.Errorf("an organization is required: pass --org or --url with organization=")
	}

	e, ctx, cancel, err := cliEnv()
	if err != nil {
		return err
	}
	defer cancel()

	var latch filters.Latch
	f := filters.Default()
	if applied, ok := latch.Apply(f, loc.Query); ok {
		f = applied
	}

	s := store.New(ctx)
	defer s.Close()

	key := store.NewQueryKey(loc.Organization, loc.Repo, f)
	key.Platform = e.cfg.Platform
	req, _ := s.SetKey(key)
	for req != nil {
		if err := s.Receive(req.Run(e.polar)); err != nil {
			return fmt.Errorf("failed to list issues: %w", err)
		}
		if !allFlag {
			break
		}
		req, _ = s.FetchNextPage()
	}

	issues := s.Issues()
	limit := limitFlag
	if limit < 0 {
		limit = e.cfg.PageSize
	}
	if limit > 0 && len(issues) > limit {
		issues = issues[:limit]
	}

	total, ok := dashboard.TotalCount(s.Pages())
	if !ok {
		total = len(issues)
	}
	return formatter().FormatIssues(issues, total)
}

func newBackofficeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backoffice",
		Short: "Reconcile pending pledge rewards",
	}

	rewards := &cobra.Command{
		Use:   "rewards",
		Short: "List pending rewards grouped by issue and pledge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ctx, cancel, err := cliEnv()
			if err != nil {
				return err
			}
			defer cancel()

			list, err := e.polar.ListPendingRewards(ctx)
			if err != nil {
				return fmt.Errorf("failed to list pending rewards: %w", err)
			}
			return formatter().FormatRewards(backoffice.Group(list))
		},
	}
	rewards.Flags().BoolVar(&jsonFlag, "json", false, "Output as JSON")

	transfer := &cobra.Command{
		Use:   "transfer <pledge_id> <issue_reward_id>",
		Short: "Create the payout transfer for one pending reward",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ctx, cancel, err := cliEnv()
			if err != nil {
				return err
			}
			defer cancel()

			list, err := e.polar.ListPendingRewards(ctx)
			if err != nil {
				return fmt.Errorf("failed to list pending rewards: %w", err)
			}
			for _, r := range list {
				key := r.TransferKey()
				if key.PledgeID != args[0] || key.IssueRewardID != args[1] {
					continue
				}
				if err := backoffice.NewTransfers().Transfer(ctx, e.polar, r); err != nil {
					return err
				}
				e.logger.Info("transfer created", "pledge_id", key.PledgeID, "issue_reward_id", key.IssueRewardID)
				return formatter().FormatMessage("Transfer created for pledge %s reward %s", key.PledgeID, key.IssueRewardID)
			}
			return fmt.Errorf("no pending reward %s for pledge %s", args[1], args[0])
		},
	}
	transfer.Flags().BoolVar(&jsonFlag, "json", false, "Output as JSON")

	cmd.AddCommand(rewards, transfer)
	return cmd
}

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change local preferences",
	}

	open := func() (*prefs.Store, error) {
		path, err := prefs.DefaultPath()
		if err != nil {
			return nil, err
		}
		return prefs.New(&prefs.File{Path: path}), nil
	}

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := open()
			if err != nil {
				return err
			}
			value, ok, err := p.Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s is not set", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := open()
			if err != nil {
				return err
			}
			return p.Set(args[0], args[1])
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print every stored preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := open()
			if err != nil {
				return err
			}
			all, err := p.All()
			if err != nil {
				return err
			}
			for _, kv := range all {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", kv[0], kv[1])
			}
			return nil
		},
	}

	cmd.AddCommand(get, set, list)
	return cmd
}
