package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/activitylog"
	"github.com/cleared-dev/fincore/internal/loan"
	"github.com/cleared-dev/fincore/internal/logger"
)

// ErrVerifyFailed is returned when verify finds problems.
var ErrVerifyFailed = errors.New("ledger verification failed")

func newVerifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the ledger and tracked loans for inconsistencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			book, _, err := a.open()
			if err != nil {
				return err
			}

			var problems []string
			for _, v := range book.Ledger.Verify() {
				problems = append(problems, v.Error())
			}
			for _, l := range book.Loans {
				if err := loan.Validate(l); err != nil {
					problems = append(problems, err.Error())
				}
			}

			out := cmd.OutOrStdout()
			if len(problems) == 0 {
				success(out, "Ledger OK: %d accounts, %d transactions, %d loans",
					len(book.Ledger.Accounts()), len(book.Ledger.Transactions()), len(book.Loans))
				return nil
			}
			for _, p := range problems {
				warning(out, "%s", p)
			}
			logger.Get().Warnw("verification failed", "problems", len(problems))
			if err := activitylog.Append(a.dir(), activitylog.Entry{
				Timestamp: a.now().UTC(),
				Command:   "verify",
				Action:    "verify_failed",
				Amount:    strconv.Itoa(len(problems)),
				Details:   problems[0],
			}); err != nil {
				logger.Get().Warnw("failed to write activity log", "error", err)
			}
			return fmt.Errorf("%w: %d problems", ErrVerifyFailed, len(problems))
		},
	}
}
