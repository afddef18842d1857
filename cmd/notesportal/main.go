package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"notesportal/internal/api"
	"notesportal/internal/auth"
	"notesportal/internal/checkout"
	"notesportal/internal/config"
	"notesportal/internal/payment"
	"notesportal/internal/routes"
	"notesportal/internal/session"
	"notesportal/internal/view"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("notesportal: %v", err)
	}
}

type app struct {
	cfg    config.Config
	store  *session.Store
	client *api.Client
	flow   *auth.Flow
	out    io.Writer
}

func run(args []string) error {
	cfg := config.Load()

	store := session.NewStore(cfg.StateDir)
	if err := store.Load(); err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	a := &app{cfg: cfg, store: store, out: os.Stdout}
	a.client = api.New(cfg.APIBaseURL, cfg.RequestTimeout, store, func() {
		fmt.Fprintln(os.Stderr, "Session expired. Please log in again.")
	})
	a.flow = auth.NewFlow(a.client, store, cfg.AdminRegistrationKey)

	ctx := context.Background()

	if len(args) == 0 {
		return a.root(ctx)
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "register":
		return a.register(ctx, rest)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami()
	case "notes":
		return a.notes(ctx, rest)
	case "download":
		return a.download(ctx, rest)
	case "buy":
		return a.buy(ctx, rest)
	case "purchases":
		return a.purchases(ctx)
	case "upload":
		return a.upload(ctx, rest)
	case "delete-note":
		return a.deleteNote(ctx, rest)
	case "users":
		return a.users(ctx)
	case "delete-user":
		return a.deleteUser(ctx, rest)
	case "stats":
		return a.stats(ctx)
	case "wallet":
		return a.wallet(ctx)
	case "history":
		return a.history(ctx)
	case "bank-details":
		return a.bankDetails(ctx, rest)
	case "withdraw":
		return a.withdraw(ctx, rest)
	case "help", "-h", "--help":
		usage(a.out)
		return nil
	default:
		usage(os.Stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: notesportal <command> [flags]

Session
  login         Sign in with email and password
  register      Create an account (student or admin)
  logout        Sign out and forget the local session
  whoami        Show the signed-in identity

Student
  notes         Browse notes, with optional filters
  download      Download a note's file
  buy           Purchase a premium note
  purchases     List your purchases

Admin
  upload        Upload a new note
  delete-note   Remove one of your notes
  users         List registered users
  delete-user   Remove a user account
  stats         Platform totals
  wallet        Earnings wallet
  history       Payment history
  bank-details  Set payout bank account
  withdraw      Request a withdrawal
`)
}

// guard runs the navigation decision for dest and reports where an
// unauthorized command lands instead.
func (a *app) guard(dest routes.Destination) error {
	sess, ok := a.store.Current()
	decision := routes.Decide(sess, ok, dest)
	if decision.Allow {
		return nil
	}
	if decision.Redirect == routes.DestLogin {
		return errors.New("not signed in, run 'notesportal login' first")
	}
	return fmt.Errorf("not available for your account, try the %s commands", roleName(sess.User.Role))
}

func roleName(role string) string {
	if role == session.RoleAdmin {
		return "admin"
	}
	return "student"
}

func (a *app) root(ctx context.Context) error {
	sess, ok := a.store.Current()
	decision := routes.Decide(sess, ok, routes.DestRoot)
	switch decision.Redirect {
	case routes.DestLogin:
		fmt.Fprintln(a.out, "Not signed in. Run 'notesportal login' to get started.")
		return nil
	case routes.DestAdminDashboard:
		fmt.Fprintf(a.out, "Signed in as %s (admin)\n\n", sess.User.Name)
		return a.stats(ctx)
	default:
		fmt.Fprintf(a.out, "Signed in as %s (student)\n\n", sess.User.Name)
		return a.notes(ctx, nil)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		var err error
		if *password, err = promptSecret("Password: "); err != nil {
			return err
		}
	}

	landing, err := a.flow.Login(ctx, *email, *password)
	if err != nil {
		return errors.New(api.Message(err, err.Error()))
	}
	sess, _ := a.store.Current()
	fmt.Fprintf(a.out, "Welcome back, %s. You are on %s.\n", sess.User.Name, landing)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	form := auth.RegisterForm{}
	fs.StringVar(&form.Name, "name", "", "full name")
	fs.StringVar(&form.Email, "email", "", "account email")
	fs.StringVar(&form.Role, "role", session.RoleStudent, "student or admin")
	fs.StringVar(&form.Department, "department", "", "department, e.g. 'Computer Science'")
	fs.IntVar(&form.Semester, "semester", 0, "semester 1-8")
	fs.StringVar(&form.AdminKey, "admin-key", "", "registration key, admin role only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if form.Password, err = promptSecret("Password: "); err != nil {
		return err
	}
	if form.ConfirmPassword, err = promptSecret("Confirm password: "); err != nil {
		return err
	}

	landing, err := a.flow.Register(ctx, form)
	if err != nil {
		return errors.New(api.Message(err, err.Error()))
	}
	sess, _ := a.store.Current()
	fmt.Fprintf(a.out, "Account created. Welcome, %s. You are on %s.\n", sess.User.Name, landing)
	return nil
}

func (a *app) logout() error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *app) whoami() error {
	sess, ok := a.store.Current()
	if !ok {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(a.out, "[%s] %s <%s> (%s)\n", view.Initials(sess.User.Name), sess.User.Name, sess.User.Email, sess.User.Role)
	return nil
}

func (a *app) notes(ctx context.Context, args []string) error {
	if err := a.guard(routes.DestStudentDashboard); err != nil {
		// Admins browse their own notes through the same listing.
		if err2 := a.guard(routes.DestAdminDashboard); err2 != nil {
			return err
		}
	}
	fs := flag.NewFlagSet("notes", flag.ContinueOnError)
	filters := api.NoteFilters{}
	fs.StringVar(&filters.Department, "department", "", "filter by department")
	fs.IntVar(&filters.Semester, "semester", 0, "filter by semester")
	fs.StringVar(&filters.Subject, "subject", "", "filter by subject")
	show := fs.String("show", "", "show one note by id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	listing, err := a.client.ListNotes(ctx, filters)
	if err != nil {
		return errors.New(api.Message(err, "could not load notes"))
	}
	if *show != "" {
		note, err := findNote(listing, *show)
		if err != nil {
			return err
		}
		view.RenderNoteDetail(a.out, note)
		return nil
	}
	view.RenderNotes(a.out, listing)
	return nil
}

func findNote(listing []api.Note, id string) (api.Note, error) {
	for _, n := range listing {
		if n.ID == id {
			return n, nil
		}
	}
	return api.Note{}, fmt.Errorf("no note with id %s", id)
}

func (a *app) download(ctx context.Context, args []string) error {
	if err := a.guard(routes.DestStudentDashboard); err != nil {
		return err
	}
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	dir := fs.String("dir", ".", "directory to save into")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: notesportal download <note-id>")
	}
	noteID := fs.Arg(0)

	listing, err := a.client.ListNotes(ctx, api.NoteFilters{})
	if err != nil {
		return errors.New(api.Message(err, "could not load notes"))
	}
	note, err := findNote(listing, noteID)
	if err != nil {
		return err
	}

	if err := a.client.RecordDownload(ctx, noteID); err != nil {
		return errors.New(api.Message(err, "download not allowed"))
	}
	path, err := saveFile(ctx, note.FileURL, *dir, note.FileName)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s\n", path)
	return nil
}

func saveFile(ctx context.Context, fileURL, dir, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching file: status %d", resp.StatusCode)
	}

	if name == "" {
		name = filepath.Base(fileURL)
	}
	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", err
	}
	return path, nil
}

func (a *app) buy(ctx context.Context, args []string) error {
	if err := a.guard(routes.DestStudentDashboard); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: notesportal buy <note-id>")
	}
	noteID := args[0]

	listing, err := a.client.ListNotes(ctx, api.NoteFilters{})
	if err != nil {
		return errors.New(api.Message(err, "could not load notes"))
	}
	note, err := findNote(listing, noteID)
	if err != nil {
		return err
	}
	if !note.IsPremium {
		return fmt.Errorf("%s is free, use 'notesportal download %s'", note.Title, noteID)
	}

	fee, total := payment.Breakdown(note.Price)
	fmt.Fprintf(a.out, "Buying %s for %s (includes %s platform fee)\n",
		note.Title, view.FormatCurrency(total), view.FormatCurrency(fee))

	done := make(chan payment.State, 8)
	browser := checkout.NewBrowser(a.cfg.CheckoutCallbackAddr, a.cfg.RazorpayKeyID)
	handshake := payment.New(a.client, browser, func(s payment.State) { done <- s })

	// The checkout resolves in the browser; the purchase context must
	// outlive the per-request timeout.
	if err := handshake.Initiate(ctx, note); err != nil {
		return errors.New(api.Message(err, "could not start the purchase"))
	}
	fmt.Fprintln(a.out, "Complete the payment in your browser...")

	for state := range done {
		switch state {
		case payment.StateVerified:
			fmt.Fprintf(a.out, "Payment verified. %s is now available via 'notesportal download %s'.\n", note.Title, noteID)
			return nil
		case payment.StateVerifyFailed:
			return errors.New("payment could not be verified, you were not charged twice; retry the purchase")
		case payment.StateIdle:
			fmt.Fprintln(a.out, "Checkout dismissed. Nothing was charged.")
			return nil
		}
	}
	return nil
}

func (a *app) purchases(ctx context.Context) error {
	if err := a.guard(routes.DestPurchases); err != nil {
		return err
	}
	purchases, err := a.client.StudentPurchases(ctx)
	if err != nil {
		return errors.New(api.Message(err, "could not load purchases"))
	}
	view.RenderPurchases(a.out, purchases)
	return nil
}

func (a *app) upload(ctx context.Context, args []string) error {
	if err := a.guard(routes.DestAdminDashboard); err != nil {
		return err
	}
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	req := api.UploadNoteRequest{}
	fs.StringVar(&req.Title, "title", "", "note title")
	fs.StringVar(&req.Subject, "subject", "", "subject")
	fs.StringVar(&req.Department, "department", "", "department")
	fs.IntVar(&req.Semester, "semester", 0, "semester 1-8")
	fs.StringVar(&req.Description, "description", "", "description")
	fs.BoolVar(&req.IsPremium, "premium", false, "paid note")
	fs.Float64Var(&req.Price, "price", 0, "price in rupees, premium only")
	file := fs.String("file", "", "path to the note file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if req.Title == "" || req.Subject == "" || *file == "" {
		return errors.New("title, subject and file are required")
	}
	if !view.ValidDepartment(req.Department) {
		return fmt.Errorf("unknown department %q, one of: %s", req.Department, strings.Join(view.Departments, ", "))
	}
	if !view.ValidSemester(req.Semester) {
		return errors.New("semester must be between 1 and 8")
	}
	if req.IsPremium && req.Price <= 0 {
		return errors.New("premium notes need a price above zero")
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()
	req.FileName = filepath.Base(*file)
	req.File = f

	note, err := a.client.UploadNote(ctx, req)
	if err != nil {
		return errors.New(api.Message(err, "upload failed"))
	}
	fmt.Fprintf(a.out, "Uploaded %s (%s)\n", note.Title, note.ID)
	return nil
}

func (a *app) deleteNote(ctx context.Context, args []string) error {
	if err := a.guard(routes.DestAdminDashboard); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: notesportal delete-note <note-id>")
	}
	if err := a.client.DeleteNote(ctx, args[0]); err != nil {
		return errors.New(api.Message(err, "could not delete note"))
	}
	fmt.Fprintln(a.out, "Note deleted.")
	return nil
}

func (a *app) users(ctx context.Context) error {
	if err := a.guard(routes.DestAdminDashboard); err != nil {
		return err
	}
	users, err := a.client.ListUsers(ctx)
	if err != nil {
		return errors.New(api.Message(err, "could not load users"))
	}
	view.RenderUsers(a.out, users)
	return nil
}

func (a *app) deleteUser(ctx context.Context, args []string) error {
	if err := a.guard(routes.DestAdminDashboard); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: notesportal delete-user <user-id>")
	}
	if err := a.client.DeleteUser(ctx, args[0]); err != nil {
		return errors.New(api.Message(err, "could not delete user"))
	}
	fmt.Fprintln(a.out, "User deleted.")
	return nil
}

func (a *app) stats(ctx context.Context) error {
	if err := a.guard(routes.DestAdminDashboard); err != nil {
		return err
	}
	stats, err := a.client.AdminStats(ctx)
	if err != nil {
		return errors.New(api.Message(err, "could not load stats"))
	}
	view.RenderStats(a.out, stats)
	return nil
}

func (a *app) wallet(ctx context.Context) error {
	if err := a.guard(routes.DestWallet); err != nil {
		return err
	}
	wallet, err := a.client.AdminWallet(ctx)
	if err != nil {
		return errors.New(api.Message(err, "could not load wallet"))
	}
	view.RenderWallet(a.out, wallet)
	return nil
}

func (a *app) history(ctx context.Context) error {
	if err := a.guard(routes.DestWallet); err != nil {
		return err
	}
	payments, err := a.client.PaymentHistory(ctx)
	if err != nil {
		return errors.New(api.Message(err, "could not load payment history"))
	}
	view.RenderPayments(a.out, payments)
	return nil
}

func (a *app) bankDetails(ctx context.Context, args []string) error {
	if err := a.guard(routes.DestWallet); err != nil {
		return err
	}
	fs := flag.NewFlagSet("bank-details", flag.ContinueOnError)
	account := api.BankAccount{}
	fs.StringVar(&account.AccountHolderName, "holder", "", "account holder name")
	fs.StringVar(&account.AccountNumber, "account", "", "account number")
	fs.StringVar(&account.IFSCCode, "ifsc", "", "IFSC code")
	fs.StringVar(&account.BankName, "bank", "", "bank name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if account.AccountHolderName == "" || account.AccountNumber == "" || account.IFSCCode == "" || account.BankName == "" {
		return errors.New("holder, account, ifsc and bank are all required")
	}

	if err := a.client.UpdateBankDetails(ctx, account); err != nil {
		return errors.New(api.Message(err, "could not save bank details"))
	}
	fmt.Fprintln(a.out, "Bank details saved.")
	return nil
}

func (a *app) withdraw(ctx context.Context, args []string) error {
	if err := a.guard(routes.DestWallet); err != nil {
		return err
	}
	fs := flag.NewFlagSet("withdraw", flag.ContinueOnError)
	amount := fs.Float64("amount", 0, "amount in rupees")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *amount <= 0 {
		return errors.New("amount must be above zero")
	}

	wallet, err := a.client.AdminWallet(ctx)
	if err != nil {
		return errors.New(api.Message(err, "could not load wallet"))
	}
	if *amount > wallet.CurrentBalance {
		return fmt.Errorf("amount exceeds current balance %s", view.FormatCurrency(wallet.CurrentBalance))
	}
	if wallet.BankAccount.AccountNumber == "" {
		return errors.New("set bank details first with 'notesportal bank-details'")
	}

	if err := a.client.RequestWithdrawal(ctx, *amount); err != nil {
		return errors.New(api.Message(err, "withdrawal request failed"))
	}
	fmt.Fprintf(a.out, "Withdrawal of %s requested.\n", view.FormatCurrency(*amount))
	return nil
}

// promptSecret reads without echo on a terminal and falls back to a plain
// line read for piped input.
func promptSecret(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
