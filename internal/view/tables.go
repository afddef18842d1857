package view

import (
	"fmt"
	"io"
	"text/tabwriter"

	"notesportal/internal/api"
	"notesportal/internal/payment"
	"notesportal/internal/session"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func RenderNotes(w io.Writer, notes []api.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tSUBJECT\tDEPT\tSEM\tPRICE\tDOWNLOADS")
	for _, n := range notes {
		price := "Free"
		if n.IsPremium {
			price = FormatCurrency(n.Price)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%d\n",
			n.ID, Truncate(n.Title, 40), n.Subject, Truncate(n.Department, 20), n.Semester, price, n.Downloads)
	}
	tw.Flush()
}

func RenderNoteDetail(w io.Writer, n api.Note) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Title:\t%s\n", n.Title)
	fmt.Fprintf(tw, "Subject:\t%s\n", n.Subject)
	fmt.Fprintf(tw, "Department:\t%s\n", n.Department)
	fmt.Fprintf(tw, "Semester:\t%d\n", n.Semester)
	if n.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", n.Description)
	}
	if n.IsPremium {
		fee, total := payment.Breakdown(n.Price)
		fmt.Fprintf(tw, "Price:\t%s (platform fee %s)\n", FormatCurrency(total), FormatCurrency(fee))
	} else {
		fmt.Fprintf(tw, "Price:\tFree\n")
	}
	fmt.Fprintf(tw, "Downloads:\t%d\n", n.Downloads)
	fmt.Fprintf(tw, "Uploaded:\t%s\n", FormatDate(n.CreatedAt))
	tw.Flush()
}

func RenderUsers(w io.Writer, users []session.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tDEPT\tSEM")
	for _, u := range users {
		sem := "-"
		if u.Semester > 0 {
			sem = fmt.Sprintf("%d", u.Semester)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Name, u.Email, u.Role, Truncate(u.Department, 20), sem)
	}
	tw.Flush()
}

func RenderPurchases(w io.Writer, purchases []api.Purchase) {
	if len(purchases) == 0 {
		fmt.Fprintln(w, "No purchases yet.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tNOTE\tSUBJECT\tAMOUNT\tSTATUS")
	for _, p := range purchases {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			FormatDate(p.CreatedAt), Truncate(p.Note.Title, 40), p.Note.Subject, FormatCurrency(p.Amount), p.Status)
	}
	tw.Flush()
}

func RenderPayments(w io.Writer, payments []api.Payment) {
	if len(payments) == 0 {
		fmt.Fprintln(w, "No payments yet.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tNOTE\tAMOUNT\tFEE\tEARNED\tSTATUS")
	for _, p := range payments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			FormatDate(p.CreatedAt), Truncate(p.Note.Title, 40),
			FormatCurrency(p.Amount), FormatCurrency(p.PlatformFee), FormatCurrency(p.AdminProfit), p.Status)
	}
	tw.Flush()
}

func RenderWallet(w io.Writer, wallet api.Wallet) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total earnings:\t%s\n", FormatCurrency(wallet.TotalEarnings))
	fmt.Fprintf(tw, "Current balance:\t%s\n", FormatCurrency(wallet.CurrentBalance))
	fmt.Fprintf(tw, "Pending balance:\t%s\n", FormatCurrency(wallet.PendingBalance))
	fmt.Fprintf(tw, "Total withdrawals:\t%s\n", FormatCurrency(wallet.TotalWithdrawals))
	tw.Flush()
	if wallet.BankAccount.AccountNumber != "" {
		fmt.Fprintln(w)
		tw = newTable(w)
		fmt.Fprintf(tw, "Account holder:\t%s\n", wallet.BankAccount.AccountHolderName)
		fmt.Fprintf(tw, "Account number:\t%s\n", maskAccount(wallet.BankAccount.AccountNumber))
		fmt.Fprintf(tw, "IFSC:\t%s\n", wallet.BankAccount.IFSCCode)
		fmt.Fprintf(tw, "Bank:\t%s\n", wallet.BankAccount.BankName)
		tw.Flush()
	}
}

func maskAccount(number string) string {
	if len(number) <= 4 {
		return number
	}
	return "****" + number[len(number)-4:]
}

func RenderStats(w io.Writer, stats api.Stats) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Notes:\t%d\n", stats.TotalNotes)
	fmt.Fprintf(tw, "Students:\t%d\n", stats.TotalStudents)
	fmt.Fprintf(tw, "Admins:\t%d\n", stats.TotalAdmins)
	fmt.Fprintf(tw, "Downloads:\t%d\n", stats.TotalDownloads)
	tw.Flush()
}
