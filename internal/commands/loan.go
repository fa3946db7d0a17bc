package commands

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/accounts"
	"github.com/cleared-dev/fincore/internal/activitylog"
	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/currency"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/loan"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/store"
)

func newLoanCommand(a *app) *cobra.Command {
	loanCmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan calculators and tracked loans",
	}
	loanCmd.AddCommand(newLoanPaymentCommand(a))
	loanCmd.AddCommand(newLoanScheduleCommand(a))
	loanCmd.AddCommand(newLoanEarlyRepaymentCommand(a))
	loanCmd.AddCommand(newLoanCompareCommand(a))

	loanCmd.AddCommand(newLoanAddCommand(a))
	loanCmd.AddCommand(newLoanListCommand(a))
	loanCmd.AddCommand(newLoanShowCommand(a))
	loanCmd.AddCommand(newLoanPayCommand(a))
	loanCmd.AddCommand(newLoanRateCommand(a))
	loanCmd.AddCommand(newLoanRepayCommand(a))
	return loanCmd
}

func parseDecimal(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing --%s %q: %w", flag, s, err)
	}
	return d, nil
}

// optionalDecimal parses s, returning zero for an empty value.
func optionalDecimal(flag, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return parseDecimal(flag, s)
}

// termFlags are the loan terms shared by the calculators.
type termFlags struct {
	rate         string
	payments     int
	frequency    string
	amortization string
	currency     string
}

func (f *termFlags) register(cmd *cobra.Command, amortization bool) {
	cmd.Flags().StringVar(&f.rate, "rate", "", "annual interest rate in percent, e.g. 4.5 (required)")
	_ = cmd.MarkFlagRequired("rate")
	cmd.Flags().StringVar(&f.frequency, "frequency", "", "payment frequency (default: loans.frequency)")
	cmd.Flags().StringVar(&f.currency, "currency", "", "currency for rounding (default: project currency)")
	if amortization {
		cmd.Flags().StringVar(&f.amortization, "amortization", "", "french, german or american (default: loans.amortization)")
	}
}

func (f *termFlags) resolve(a *app) (decimal.Decimal, model.PaymentFrequency, model.AmortizationType, string, error) {
	rate, err := parseDecimal("rate", f.rate)
	if err != nil {
		return rate, "", "", "", err
	}
	freq := model.PaymentFrequency(f.frequency)
	if freq == "" {
		freq = a.cfg.Loans.Frequency
	}
	kind := model.AmortizationType(f.amortization)
	if kind == "" {
		kind = a.cfg.Loans.Amortization
	}
	code := currency.Normalize(f.currency)
	if f.currency == "" {
		code = a.cfg.Project.Currency
	}
	return rate, freq, kind, code, nil
}

func newLoanPaymentCommand(a *app) *cobra.Command {
	var principal string
	var terms termFlags

	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Calculate the level payment of a loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := parseDecimal("principal", principal)
			if err != nil {
				return err
			}
			rate, freq, _, code, err := terms.resolve(a)
			if err != nil {
				return err
			}
			payment, err := loan.PaymentIn(amount, rate, terms.payments, freq, code)
			if err != nil {
				return err
			}
			rows, err := loan.GenerateAmortizationSchedule(loan.ScheduleParams{
				Principal:     amount,
				AnnualRate:    rate,
				TotalPayments: terms.payments,
				Frequency:     freq,
				Currency:      code,
			})
			if err != nil {
				return err
			}
			paid, _, interest := loan.Totals(rows)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Payment:         %s (%s)\n", titleStyle.Render(money(payment, code)), freq.DisplayName())
			fmt.Fprintf(out, "Total paid:      %s\n", money(paid, code))
			fmt.Fprintf(out, "Total interest:  %s\n", money(interest, code))
			return nil
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "", "amount borrowed (required)")
	_ = cmd.MarkFlagRequired("principal")
	cmd.Flags().IntVar(&terms.payments, "payments", 0, "number of payments (required)")
	_ = cmd.MarkFlagRequired("payments")
	terms.register(cmd, false)
	return cmd
}

func printSchedule(cmd *cobra.Command, rows []loan.AmortizationEntry, code string, limit int) error {
	out := cmd.OutOrStdout()
	shown := rows
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	t := newTable(out, "#", "DATE", "PAYMENT", "PRINCIPAL", "INTEREST", "BALANCE")
	for _, r := range shown {
		t.row(strconv.Itoa(r.Number), calendar.Format(r.Date),
			money(r.Payment, code), money(r.Principal, code), money(r.Interest, code), money(r.Balance, code))
	}
	if err := t.flush(); err != nil {
		return err
	}
	if len(shown) < len(rows) {
		fmt.Fprintln(out, subtleStyle.Render(fmt.Sprintf("... %d more payments", len(rows)-len(shown))))
	}
	paid, principal, interest := loan.Totals(rows)
	fmt.Fprintf(out, "\nTotal paid %s: principal %s, interest %s\n", money(paid, code), money(principal, code), money(interest, code))
	return nil
}

func newLoanScheduleCommand(a *app) *cobra.Command {
	var principal, start string
	var limit int
	var terms termFlags

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print an amortization schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := parseDecimal("principal", principal)
			if err != nil {
				return err
			}
			rate, freq, kind, code, err := terms.resolve(a)
			if err != nil {
				return err
			}
			on, err := a.dateFlag(start)
			if err != nil {
				return err
			}
			rows, err := loan.GenerateAmortizationSchedule(loan.ScheduleParams{
				Principal:     amount,
				AnnualRate:    rate,
				TotalPayments: terms.payments,
				Frequency:     freq,
				Amortization:  kind,
				StartDate:     on,
				Currency:      code,
			})
			if err != nil {
				return err
			}
			return printSchedule(cmd, rows, code, limit)
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "", "amount borrowed (required)")
	_ = cmd.MarkFlagRequired("principal")
	cmd.Flags().IntVar(&terms.payments, "payments", 0, "number of payments (required)")
	_ = cmd.MarkFlagRequired("payments")
	cmd.Flags().StringVar(&start, "start", "", "loan start date; the first payment is one period later (default: today)")
	cmd.Flags().IntVar(&limit, "limit", 0, "only print the first N rows")
	terms.register(cmd, true)
	return cmd
}

func printRepayment(cmd *cobra.Command, res loan.EarlyRepaymentResult, code string) {
	out := cmd.OutOrStdout()
	if res.FullPayoff {
		success(out, "Pays the loan off in full")
	} else {
		fmt.Fprintf(out, "New balance:         %s\n", money(res.NewBalance, code))
		fmt.Fprintf(out, "New payment:         %s\n", money(res.NewPayment, code))
		fmt.Fprintf(out, "Payments remaining:  %d\n", res.NewRemainingPayments)
	}
	fmt.Fprintf(out, "Interest saved:      %s\n", money(res.SavedInterest, code))
	fmt.Fprintf(out, "Penalty:             %s\n", money(res.PenaltyAmount, code))
	fmt.Fprintf(out, "Net savings:         %s\n", titleStyle.Render(money(res.NetSavings, code)))
	if res.NetSavings.IsNegative() {
		warning(out, "The penalty costs more than the interest saved")
	}
}

func newLoanEarlyRepaymentCommand(a *app) *cobra.Command {
	var balance, amount, penalty, payment, mode string
	var terms termFlags

	cmd := &cobra.Command{
		Use:   "early-repayment",
		Short: "Price an extra payment against an outstanding balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bal, err := parseDecimal("balance", balance)
			if err != nil {
				return err
			}
			extra, err := parseDecimal("amount", amount)
			if err != nil {
				return err
			}
			pct, err := optionalDecimal("penalty", penalty)
			if err != nil {
				return err
			}
			current, err := optionalDecimal("payment", payment)
			if err != nil {
				return err
			}
			rate, freq, kind, code, err := terms.resolve(a)
			if err != nil {
				return err
			}
			res, err := loan.CalculateEarlyRepayment(loan.EarlyRepaymentParams{
				RemainingBalance:  bal,
				RemainingPayments: terms.payments,
				AnnualRate:        rate,
				Frequency:         freq,
				Amortization:      kind,
				Amount:            extra,
				PenaltyPercentage: pct,
				Mode:              loan.RepaymentMode(mode),
				Payment:           current,
				Currency:          code,
			})
			if err != nil {
				return err
			}
			printRepayment(cmd, res, code)
			return nil
		},
	}

	cmd.Flags().StringVar(&balance, "balance", "", "outstanding balance (required)")
	_ = cmd.MarkFlagRequired("balance")
	cmd.Flags().IntVar(&terms.payments, "remaining", 0, "payments remaining (required)")
	_ = cmd.MarkFlagRequired("remaining")
	cmd.Flags().StringVar(&amount, "amount", "", "extra payment (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&penalty, "penalty", "", "early repayment penalty in percent of the amount")
	cmd.Flags().StringVar(&payment, "payment", "", "current payment (default: computed)")
	cmd.Flags().StringVar(&mode, "mode", string(loan.ReduceTerm), "reduce-term or reduce-payment")
	terms.register(cmd, true)
	return cmd
}

func newLoanCompareCommand(a *app) *cobra.Command {
	var balance string
	var rates []string
	var terms termFlags

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare refinancing the balance at other rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bal, err := parseDecimal("balance", balance)
			if err != nil {
				return err
			}
			current, freq, _, code, err := terms.resolve(a)
			if err != nil {
				return err
			}
			alternatives := make([]decimal.Decimal, 0, len(rates))
			for _, s := range rates {
				r, err := parseDecimal("rates", s)
				if err != nil {
					return err
				}
				alternatives = append(alternatives, r)
			}
			scenarios, err := loan.CompareRates(bal, terms.payments, freq, current, alternatives)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "RATE", "PAYMENT", "CHANGE", "TOTAL INTEREST", "CHANGE")
			for _, s := range scenarios {
				t.row(percent(s.Rate), money(s.Payment, code), signed(s.PaymentChange, code),
					money(s.TotalInterest, code), signed(s.InterestChange, code))
			}
			return t.flush()
		},
	}

	cmd.Flags().StringVar(&balance, "balance", "", "outstanding balance (required)")
	_ = cmd.MarkFlagRequired("balance")
	cmd.Flags().IntVar(&terms.payments, "remaining", 0, "payments remaining (required)")
	_ = cmd.MarkFlagRequired("remaining")
	cmd.Flags().StringSliceVar(&rates, "rates", nil, "rates to compare, comma separated (required)")
	_ = cmd.MarkFlagRequired("rates")
	terms.register(cmd, false)
	return cmd
}

// nextRow returns the schedule row of the loan's next payment.
func nextRow(l model.Loan) (loan.AmortizationEntry, error) {
	rows, err := loan.Schedule(l)
	if err != nil {
		return loan.AmortizationEntry{}, err
	}
	for _, r := range rows {
		if r.Number == l.PaymentsMade+1 {
			return r, nil
		}
	}
	return loan.AmortizationEntry{}, fmt.Errorf("loan %s: %w", l.ID, loan.ErrPaidOff)
}

func newLoanAddCommand(a *app) *cobra.Command {
	var l model.Loan
	var typ, rateType, principal, apr, start string
	var terms termFlags

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Track a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, _, err := a.open()
			if err != nil {
				return err
			}
			if _, ok := book.Loan(args[0]); ok {
				return fmt.Errorf("loan %s already exists", args[0])
			}

			l.ID = args[0]
			l.Type = model.LoanType(typ)
			l.RateType = model.RateType(rateType)
			if l.Principal, err = parseDecimal("principal", principal); err != nil {
				return err
			}
			if apr != "" {
				d, err := parseDecimal("apr", apr)
				if err != nil {
					return err
				}
				l.APR = &d
			}
			if l.AnnualRate, l.Frequency, l.Amortization, l.Currency, err = terms.resolve(a); err != nil {
				return err
			}
			l.TotalPayments = terms.payments
			if l.StartDate, err = a.dateFlag(start); err != nil {
				return err
			}
			l.Existing = l.PaymentsMade > 0
			if err := loan.Validate(l); err != nil {
				return err
			}

			if l.Amortization == model.AmortizationFrench {
				l.Payment, err = loan.PaymentIn(l.Principal, l.AnnualRate, l.TotalPayments, l.Frequency, l.Currency)
			} else {
				var r loan.AmortizationEntry
				r, err = nextRow(l)
				l.Payment = r.Payment
			}
			if err != nil {
				return err
			}

			book.Loans = append(book.Loans, l)
			logger.Get().Debugw("loan added", "id", l.ID, "payment", l.Payment.String())
			if err := a.commit(cmd, book, activitylog.Entry{
				Action:  "add_loan",
				Subject: l.ID,
				Amount:  money(l.Principal, l.Currency),
				Details: fmt.Sprintf("%s at %s over %d payments", l.Name, percent(l.AnnualRate), l.TotalPayments),
			}); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Added loan %s, payment %s %s", l.Name, money(l.Payment, l.Currency), l.Frequency.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&l.Name, "name", "", "display name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&typ, "type", string(model.LoanPersonal), "mortgage, personal, auto, student, business or other")
	cmd.Flags().StringVar(&rateType, "rate-type", string(model.RateFixed), "fixed, variable or mixed")
	cmd.Flags().StringVar(&principal, "principal", "", "amount borrowed (required)")
	_ = cmd.MarkFlagRequired("principal")
	cmd.Flags().IntVar(&terms.payments, "payments", 0, "total number of payments (required)")
	_ = cmd.MarkFlagRequired("payments")
	cmd.Flags().StringVar(&apr, "apr", "", "annual percentage rate including fees")
	cmd.Flags().StringVar(&start, "start", "", "loan start date (default: today)")
	cmd.Flags().IntVar(&l.PaymentsMade, "made", 0, "payments already made on an existing loan")
	terms.register(cmd, true)
	return cmd
}

// trackedLoan loads the book and the loan with id.
func (a *app) trackedLoan(id string) (*store.Book, *model.Loan, error) {
	book, _, err := a.open()
	if err != nil {
		return nil, nil, err
	}
	l, ok := book.Loan(id)
	if !ok {
		return nil, nil, fmt.Errorf("loan %s not found", id)
	}
	return book, l, nil
}

func newLoanListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked loans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			book, _, err := a.open()
			if err != nil {
				return err
			}
			if len(book.Loans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render("No loans tracked."))
				return nil
			}
			t := newTable(cmd.OutOrStdout(), "ID", "NAME", "BALANCE", "PAYMENT", "LEFT", "PROGRESS", "NEXT")
			for _, l := range book.Loans {
				bal, err := loan.OutstandingBalance(l)
				if err != nil {
					return err
				}
				next := "paid off"
				if d, ok := loan.NextPaymentDate(l); ok {
					next = calendar.Format(d)
				}
				t.row(l.ID, l.Name, money(bal, l.Currency), money(l.Payment, l.Currency),
					strconv.Itoa(loan.RemainingPayments(l)), percent(loan.Progress(l)), next)
			}
			return t.flush()
		},
	}
}

func newLoanShowCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a loan's progress and its remaining schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, l, err := a.trackedLoan(args[0])
			if err != nil {
				return err
			}
			bal, err := loan.OutstandingBalance(*l)
			if err != nil {
				return err
			}
			interest, err := loan.RemainingInterest(*l)
			if err != nil {
				return err
			}
			rows, err := loan.Schedule(*l)
			if err != nil {
				return err
			}
			var due []loan.AmortizationEntry
			for _, r := range rows {
				if r.Number > l.PaymentsMade {
					due = append(due, r)
				}
			}

			out := cmd.OutOrStdout()
			title(out, "%s (%s, %s)", l.Name, l.Type.DisplayName(), percent(l.AnnualRate))
			fmt.Fprintf(out, "Balance:             %s of %s\n", money(bal, l.Currency), money(l.Principal, l.Currency))
			fmt.Fprintf(out, "Payments:            %d of %d made (%s)\n", l.PaymentsMade, l.TotalPayments, percent(loan.Progress(*l)))
			fmt.Fprintf(out, "Interest remaining:  %s\n\n", money(interest, l.Currency))
			if len(due) == 0 {
				success(out, "Paid off")
				return nil
			}
			return printSchedule(cmd, due, l.Currency, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 12, "rows to print, 0 for all")
	return cmd
}

// loanPosting records the ledger side of a loan payment.
type loanPosting struct {
	from      string
	liability string
	expense   string
}

func (p *loanPosting) register(cmd *cobra.Command, expenseFlag, expenseDefault, expenseHelp string) {
	cmd.Flags().StringVar(&p.from, "from", "", "post the payment to the ledger from this account")
	cmd.Flags().StringVar(&p.liability, "account", "", "liability account of the loan (required with --from)")
	cmd.Flags().StringVar(&p.expense, expenseFlag, expenseDefault, expenseHelp)
}

// post debits principal to the liability and extra to the expense account,
// crediting both from the paying account. It does nothing without --from.
func (p *loanPosting) post(book *store.Book, date string, description string, principal, extra decimal.Decimal) (*model.Transaction, error) {
	if p.from == "" {
		return nil, nil
	}
	if p.liability == "" {
		return nil, fmt.Errorf("--account is required with --from")
	}
	accts, err := resolveAll(accounts.NewChart(book.Ledger.Accounts()), p.from, p.liability, p.expense)
	if err != nil {
		return nil, err
	}
	on, err := calendar.Parse(date)
	if err != nil {
		return nil, err
	}

	var lines []ledger.Line
	if principal.IsPositive() {
		lines = append(lines, ledger.Debit(accts[1], principal))
	}
	if extra.IsPositive() {
		lines = append(lines, ledger.Debit(accts[2], extra))
	}
	lines = append(lines, ledger.Credit(accts[0], principal.Add(extra)))
	txn, err := ledger.NewTransaction(ledger.TransactionParams{Date: on, Description: description}, lines)
	if err != nil {
		return nil, err
	}
	if txn, err = book.Ledger.Post(txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func newLoanPayCommand(a *app) *cobra.Command {
	var posting loanPosting
	var date string

	cmd := &cobra.Command{
		Use:   "pay <id>",
		Short: "Record the next scheduled payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, l, err := a.trackedLoan(args[0])
			if err != nil {
				return err
			}
			row, err := nextRow(*l)
			if err != nil {
				return err
			}
			on := calendar.Format(row.Date)
			if date != "" {
				on = date
			}
			desc := fmt.Sprintf("%s payment %d", l.Name, row.Number)
			txn, err := posting.post(book, on, desc, row.Principal, row.Interest)
			if err != nil {
				return err
			}
			if err := loan.RecordPayment(l); err != nil {
				return err
			}

			entries := []activitylog.Entry{{
				Action:  "record_loan_payment",
				Subject: l.ID,
				Amount:  money(row.Payment, l.Currency),
				Details: fmt.Sprintf("payment %d of %d: principal %s, interest %s", row.Number, l.TotalPayments,
					money(row.Principal, l.Currency), money(row.Interest, l.Currency)),
			}}
			if txn != nil {
				entries = append(entries, activitylog.Entry{Action: "post_transaction", Subject: txn.ID, Amount: money(row.Payment, l.Currency), Details: desc})
			}
			if err := a.commit(cmd, book, entries...); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Recorded payment %d of %d on %s: %s (principal %s, interest %s)",
				row.Number, l.TotalPayments, l.Name, money(row.Payment, l.Currency),
				money(row.Principal, l.Currency), money(row.Interest, l.Currency))
			return nil
		},
	}

	posting.register(cmd, "interest-account", "loan-interest", "expense account for the interest")
	cmd.Flags().StringVar(&date, "date", "", "ledger date (default: the scheduled date)")
	return cmd
}

func newLoanRateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <id> <rate>",
		Short: "Move a loan to a new annual rate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := parseDecimal("rate", args[1])
			if err != nil {
				return err
			}
			book, l, err := a.trackedLoan(args[0])
			if err != nil {
				return err
			}
			old := l.AnnualRate
			if err := loan.UpdateRate(l, rate); err != nil {
				return err
			}
			if err := a.commit(cmd, book, activitylog.Entry{
				Action:  "update_loan_rate",
				Subject: l.ID,
				Amount:  money(l.Payment, l.Currency),
				Details: fmt.Sprintf("%s -> %s", percent(old), percent(rate)),
			}); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s now at %s, payment %s", l.Name, percent(rate), money(l.Payment, l.Currency))
			return nil
		},
	}
}

func newLoanRepayCommand(a *app) *cobra.Command {
	var posting loanPosting
	var amount, penalty, mode, date string

	cmd := &cobra.Command{
		Use:   "repay <id>",
		Short: "Apply an early repayment to a tracked loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseDecimal("amount", amount)
			if err != nil {
				return err
			}
			pct, err := optionalDecimal("penalty", penalty)
			if err != nil {
				return err
			}
			on, err := a.dateFlag(date)
			if err != nil {
				return err
			}
			book, l, err := a.trackedLoan(args[0])
			if err != nil {
				return err
			}
			balance, err := loan.OutstandingBalance(*l)
			if err != nil {
				return err
			}
			res, err := loan.ApplyEarlyRepayment(l, extra, pct, loan.RepaymentMode(mode))
			if err != nil {
				return err
			}

			principal := balance.Sub(res.NewBalance)
			desc := l.Name + " early repayment"
			txn, err := posting.post(book, calendar.Format(on), desc, principal, res.PenaltyAmount)
			if err != nil {
				return err
			}
			entries := []activitylog.Entry{{
				Action:  "early_repayment",
				Subject: l.ID,
				Amount:  money(principal, l.Currency),
				Details: fmt.Sprintf("saved %s, penalty %s", money(res.SavedInterest, l.Currency), money(res.PenaltyAmount, l.Currency)),
			}}
			if txn != nil {
				entries = append(entries, activitylog.Entry{Action: "post_transaction", Subject: txn.ID, Amount: money(principal.Add(res.PenaltyAmount), l.Currency), Details: desc})
			}
			if err := a.commit(cmd, book, entries...); err != nil {
				return err
			}
			printRepayment(cmd, res, l.Currency)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "extra payment (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&penalty, "penalty", "", "early repayment penalty in percent of the amount")
	cmd.Flags().StringVar(&mode, "mode", string(loan.ReduceTerm), "reduce-term or reduce-payment")
	cmd.Flags().StringVar(&date, "date", "", "repayment date (default: today)")
	posting.register(cmd, "penalty-account", "bank-fees", "expense account for the penalty")
	return cmd
}
