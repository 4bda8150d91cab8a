// Command portalctl is a terminal client for the recruitment portal API.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"recruitment_portal/internal/client"
	"recruitment_portal/internal/model"

	"golang.org/x/term"
)

type command struct {
	name      string
	usage     string
	adminOnly bool
	run       func(ctx context.Context, a *app, args []string) error
}

type app struct {
	session  *client.Session
	api      *client.Client
	out      io.Writer
	in       *bufio.Reader
	password func() (string, error)
}

var commands = []command{
	{name: "login", usage: "login -email <email>", run: runLogin},
	{name: "logout", usage: "logout", run: runLogout},
	{name: "whoami", usage: "whoami", run: runWhoami},
	{name: "jobs", usage: "jobs [-department d] [-q text]", run: runJobs},
	{name: "my-applications", usage: "my-applications", run: runMyApplications},
	{name: "applications", usage: "applications [-status s]", adminOnly: true, run: runApplications},
	{name: "apply-status", usage: "apply-status <application-id> <status>", adminOnly: true, run: runApplyStatus},
	{name: "create-job", usage: "create-job -title t -department d -location l -experience e -deadline YYYY-MM-DD -description text", adminOnly: true, run: runCreateJob},
}

func main() {
	server := os.Getenv("PORTAL_URL")
	if server == "" {
		server = "http://localhost:8080"
	}
	sessionPath := os.Getenv("PORTAL_SESSION")
	if sessionPath == "" {
		sessionPath = client.DefaultSessionPath()
	}

	session, err := client.LoadSession(sessionPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a := &app{
		session:  session,
		api:      client.New(server, nil).WithToken(session.Token()),
		out:      os.Stdout,
		in:       bufio.NewReader(os.Stdin),
		password: promptPassword,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.dispatch(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// visibleCommands hides admin commands unless the stored token claims the admin role
func (a *app) visibleCommands() []command {
	var visible []command
	for _, c := range commands {
		if c.adminOnly && !a.session.IsAdmin() {
			continue
		}
		visible = append(visible, c)
	}
	return visible
}

func (a *app) usage() {
	fmt.Fprintln(a.out, "usage: portalctl <command> [flags]")
	fmt.Fprintln(a.out, "commands:")
	for _, c := range a.visibleCommands() {
		fmt.Fprintf(a.out, "  %s\n", c.usage)
	}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return nil
	}
	for _, c := range a.visibleCommands() {
		if c.name == args[0] {
			return c.run(ctx, a, args[1:])
		}
	}
	a.usage()
	return fmt.Errorf("unknown command %q", args[0])
}

func promptPassword() (string, error) {
	if pw := os.Getenv("PORTAL_PASSWORD"); pw != "" {
		return pw, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fmt.Fprint(a.out, "Email: ")
		line, err := a.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		*email = strings.TrimSpace(line)
	}
	password, err := a.password()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	token, err := a.api.Login(ctx, *email, password)
	if err != nil {
		return err
	}
	if err := a.session.Save(token); err != nil {
		return err
	}
	a.api = a.api.WithToken(token)
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", *email, a.session.Role())
	return nil
}

func runLogout(_ context.Context, a *app, _ []string) error {
	if err := a.session.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func requireLogin(a *app) error {
	if !a.session.LoggedIn() {
		return fmt.Errorf("%w: run portalctl login first", client.ErrNotLoggedIn)
	}
	return nil
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	if err := requireLogin(a); err != nil {
		return err
	}
	user, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s <%s> role=%s\n", user.FirstName, user.LastName, user.Email, user.Role)
	return nil
}

func runJobs(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
	department := fs.String("department", "", "filter by department")
	search := fs.String("q", "", "search title and description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	jobs, err := a.api.ListJobs(ctx, *department, *search)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDEPARTMENT\tLOCATION\tDEADLINE")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.ID, j.Title, j.Department, j.Location, j.Deadline.Format("2006-01-02"))
	}
	return tw.Flush()
}

func printApplications(w io.Writer, apps []model.Application) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAPPLICANT\tPOSITION\tDEPARTMENT\tSTATUS\tAPPLIED")
	for _, ap := range apps {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s\t%s\n", ap.ID, ap.FirstName, ap.LastName,
			ap.Position, ap.Department, ap.Status, ap.AppliedDate.Format("2006-01-02"))
	}
	return tw.Flush()
}

func runMyApplications(ctx context.Context, a *app, _ []string) error {
	if err := requireLogin(a); err != nil {
		return err
	}
	apps, err := a.api.MyApplications(ctx)
	if err != nil {
		return err
	}
	return printApplications(a.out, apps)
}

func runApplications(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("applications", flag.ContinueOnError)
	status := fs.String("status", "", "filter by status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	apps, err := a.api.ListApplications(ctx, *status)
	if err != nil {
		return err
	}
	return printApplications(a.out, apps)
}

func runApplyStatus(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		statuses := append([]string(nil), model.ApplicationStatuses...)
		sort.Strings(statuses)
		return fmt.Errorf("usage: apply-status <application-id> <status>; status is one of %q", statuses)
	}
	updated, err := a.api.UpdateApplicationStatus(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Application %s is now %s\n", updated.ID, updated.Status)
	return nil
}

func runCreateJob(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("create-job", flag.ContinueOnError)
	var req model.CreateJobRequest
	var deadline, skills string
	fs.StringVar(&req.Title, "title", "", "job title")
	fs.StringVar(&req.Department, "department", "", "department")
	fs.StringVar(&req.Location, "location", "", "location")
	fs.StringVar(&req.Experience, "experience", "", "required experience")
	fs.StringVar(&req.Type, "type", "", "employment type (default Full-time)")
	fs.StringVar(&req.Description, "description", "", "description")
	fs.StringVar(&deadline, "deadline", "", "application deadline YYYY-MM-DD")
	fs.StringVar(&skills, "skills", "", "comma separated skills")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := time.Parse(time.DateOnly, deadline); err != nil {
		return fmt.Errorf("invalid -deadline: %w", err)
	}
	req.Deadline = deadline
	if skills != "" {
		req.Skills = strings.Split(skills, ",")
	}

	job, err := a.api.CreateJob(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created job %s (%s)\n", job.ID, job.Title)
	return nil
}
