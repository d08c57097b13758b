// Package cli is the line-oriented teller console over the ledger service.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Overland-East-Bay/account-ledger/internal/app/ledger"
	"github.com/Overland-East-Bay/account-ledger/internal/domain"
)

const (
	cmdOpen          = "O"
	cmdClose         = "C"
	cmdDeposit       = "D"
	cmdWithdraw      = "W"
	cmdPrint         = "P"
	cmdPrintInterest = "PI"
	cmdUpdate        = "UB"
	cmdQuit          = "Q"
)

// Token positions, counted from the command itself.
const (
	idxType   = 1
	idxFirst  = 2
	idxLast   = 3
	idxDOB    = 4
	idxAmount = 5
	idxExtra  = 6 // campus for College Checking, loyalty for Savings
)

type task int

const (
	taskOpen task = iota
	taskClose
	taskDeposit
	taskWithdraw
)

// Interpreter reads teller commands, one per line, and writes one or more
// result lines per command.
type Interpreter struct {
	svc *ledger.Service
}

func NewInterpreter(svc *ledger.Service) *Interpreter {
	return &Interpreter{svc: svc}
}

// Run processes commands from r until Q or end of input. Business failures are
// reported on w; only I/O and unexpected service errors are returned.
func (in *Interpreter) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	out := bufio.NewWriter(w)
	defer out.Flush()

	fmt.Fprintln(out, "Transaction Manager is running.")
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		tokens := strings.Fields(sc.Text())
		if len(tokens) == 0 {
			continue
		}

		var err error
		switch tokens[0] {
		case cmdOpen:
			err = in.open(ctx, out, tokens)
		case cmdClose:
			err = in.close(ctx, out, tokens)
		case cmdDeposit:
			err = in.deposit(ctx, out, tokens)
		case cmdWithdraw:
			err = in.withdraw(ctx, out, tokens)
		case cmdPrint:
			err = in.printSorted(ctx, out)
		case cmdPrintInterest:
			err = in.printFeesAndInterests(ctx, out)
		case cmdUpdate:
			err = in.printUpdatedBalances(ctx, out)
		case cmdQuit:
			if len(tokens) > 1 {
				fmt.Fprintln(out, "Invalid command!")
				break
			}
			fmt.Fprintln(out, "Transaction Manager is terminated.")
			return nil
		default:
			fmt.Fprintln(out, "Invalid command!")
		}
		if err != nil {
			return err
		}
	}
	return sc.Err()
}

func (in *Interpreter) open(ctx context.Context, w io.Writer, tokens []string) error {
	req := ledger.OpenInput{
		AccountRef: refFrom(tokens),
		Amount:     at(tokens, idxAmount),
		Campus:     at(tokens, idxExtra),
		Loyal:      at(tokens, idxExtra),
	}
	a, err := in.svc.Open(ctx, req)
	if err != nil {
		return report(w, taskOpen, req.AccountRef, err)
	}
	fmt.Fprintf(w, "%s(%s) opened.\n", a.Holder, a.Type.Code())
	return nil
}

func (in *Interpreter) close(ctx context.Context, w io.Writer, tokens []string) error {
	ref := refFrom(tokens)
	if err := in.svc.Close(ctx, ref); err != nil {
		return report(w, taskClose, ref, err)
	}
	fmt.Fprintf(w, "%s has been closed.\n", label(ref))
	return nil
}

func (in *Interpreter) deposit(ctx context.Context, w io.Writer, tokens []string) error {
	req := ledger.TransactionInput{AccountRef: refFrom(tokens), Amount: at(tokens, idxAmount)}
	a, err := in.svc.Deposit(ctx, req)
	if err != nil {
		return report(w, taskDeposit, req.AccountRef, err)
	}
	fmt.Fprintf(w, "%s(%s) Deposit - balance updated.\n", a.Holder, a.Type.Code())
	return nil
}

func (in *Interpreter) withdraw(ctx context.Context, w io.Writer, tokens []string) error {
	req := ledger.TransactionInput{AccountRef: refFrom(tokens), Amount: at(tokens, idxAmount)}
	a, err := in.svc.Withdraw(ctx, req)
	if err != nil {
		return report(w, taskWithdraw, req.AccountRef, err)
	}
	fmt.Fprintf(w, "%s(%s) Withdraw - balance updated.\n", a.Holder, a.Type.Code())
	return nil
}

func (in *Interpreter) printSorted(ctx context.Context, w io.Writer) error {
	as, err := in.svc.Sorted(ctx)
	if err != nil {
		return err
	}
	if len(as) == 0 {
		fmt.Fprintln(w, "Account Database is empty!")
		return nil
	}
	p := in.svc.Policy()
	fmt.Fprintln(w, "\n*list of accounts ordered by account type and profile.")
	for _, a := range as {
		fmt.Fprintln(w, a.Describe(p))
	}
	fmt.Fprint(w, "*end of list.\n\n")
	return nil
}

func (in *Interpreter) printFeesAndInterests(ctx context.Context, w io.Writer) error {
	sts, err := in.svc.FeesAndInterests(ctx)
	if err != nil {
		return err
	}
	if len(sts) == 0 {
		fmt.Fprintln(w, "Account Database is empty!")
		return nil
	}
	p := in.svc.Policy()
	fmt.Fprintln(w, "\n*list of accounts with fee and monthly interest")
	for _, st := range sts {
		fmt.Fprintf(w, "%s::fee $%s::monthly interest $%s\n",
			st.Account.Describe(p), st.Fee.StringFixed(2), st.Interest.StringFixed(2))
	}
	fmt.Fprint(w, "*end of list.\n\n")
	return nil
}

func (in *Interpreter) printUpdatedBalances(ctx context.Context, w io.Writer) error {
	sts, err := in.svc.UpdateBalances(ctx)
	if err != nil {
		return err
	}
	if len(sts) == 0 {
		fmt.Fprintln(w, "Account Database is empty!")
		return nil
	}
	p := in.svc.Policy()
	fmt.Fprintln(w, "\n*list of accounts with fees and interests applied.")
	for _, st := range sts {
		fmt.Fprintln(w, st.Account.Describe(p))
	}
	fmt.Fprint(w, "*end of list.\n\n")
	return nil
}

// report prints the teller message for a rejected command. Errors that are
// not *ledger.Error are returned to the caller unprinted.
func report(w io.Writer, t task, ref ledger.AccountRef, err error) error {
	var le *ledger.Error
	if !errors.As(err, &le) {
		return err
	}
	switch le.Code {
	case ledger.CodeMissingData, ledger.CodeUnknownAccountType, ledger.CodeInvalidLoyalty:
		fmt.Fprintln(w, missingDataMessage(t))
	case ledger.CodeNonPositiveAmount:
		fmt.Fprintln(w, nonPositiveMessage(t))
	case ledger.CodeAccountTypeConflict:
		fmt.Fprintf(w, "%s is already in the database.\n", label(ref))
	default:
		fmt.Fprintln(w, le.Message)
	}
	return nil
}

func missingDataMessage(t task) string {
	switch t {
	case taskOpen:
		return "Missing data for opening an account."
	case taskClose:
		return "Missing data for closing an account."
	default:
		return "Missing data for making an account."
	}
}

func nonPositiveMessage(t task) string {
	switch t {
	case taskOpen:
		return "Initial deposit cannot be 0 or negative."
	case taskDeposit:
		return "Deposit - amount cannot be 0 or negative."
	default:
		return "Withdraw - amount cannot be 0 or negative."
	}
}

// label renders "First Last M/D/YYYY(TYPE)" for a reference the service has
// already accepted.
func label(ref ledger.AccountRef) string {
	t, _ := domain.ParseAccountType(ref.AccountType)
	dob, _ := domain.ParseDate(strings.TrimSpace(ref.Holder.DateOfBirth))
	holder := domain.NewProfile(ref.Holder.FirstName, ref.Holder.LastName, dob)
	return fmt.Sprintf("%s(%s)", holder, t.Code())
}

func refFrom(tokens []string) ledger.AccountRef {
	return ledger.AccountRef{
		AccountType: at(tokens, idxType),
		Holder: ledger.HolderInput{
			FirstName:   at(tokens, idxFirst),
			LastName:    at(tokens, idxLast),
			DateOfBirth: at(tokens, idxDOB),
		},
	}
}

func at(tokens []string, i int) string {
	if i < len(tokens) {
		return tokens[i]
	}
	return ""
}
