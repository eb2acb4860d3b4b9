// Command notes is the terminal client for the quicknotes backend.
//
// Usage:
//
//	notes register -email a@b.com -password secret
//	notes login -email a@b.com -password secret
//	notes whoami
//	notes list
//	notes create -title "Groceries" -content "milk"
//	notes update -id 1 -title "Groceries" -content "milk,eggs"
//	notes delete -id 1
//	notes logout
//
// The server base URL comes from NOTES_SERVER (default
// http://localhost:3001) and the token file from NOTES_TOKEN_FILE
// (default ~/.quicknotes/token).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"quicknotes/internal/api"
	"quicknotes/internal/auth"
	"quicknotes/internal/models"
	"quicknotes/internal/notes"
	"quicknotes/internal/session"
)

func main() {
	godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	app, err := newApp()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			fmt.Println("Session expired. Please log in again.")
		}
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

type app struct {
	auth  *auth.Controller
	notes *notes.Controller
	api   *api.Client
}

func newApp() (*app, error) {
	serverURL := os.Getenv("NOTES_SERVER")
	if serverURL == "" {
		serverURL = "http://localhost:3001"
	}

	tokenPath := os.Getenv("NOTES_TOKEN_FILE")
	if tokenPath == "" {
		var err error
		tokenPath, err = session.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve token path: %w", err)
		}
	}

	sess := session.NewStore(tokenPath)
	client := api.NewClient(serverURL, sess)
	return &app{
		auth:  auth.NewController(client, sess),
		notes: notes.NewController(client),
		api:   client,
	}, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "list":
		return a.list(ctx)
	case "create":
		return a.create(ctx, args)
	case "update":
		return a.update(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	fs.Parse(args)
	if *email == "" || *password == "" {
		return errors.New("-email and -password are required")
	}

	resp, err := a.api.Register(ctx, models.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s (id %d)\n", resp.User.Email, resp.User.ID)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	fs.Parse(args)
	if *email == "" || *password == "" {
		return errors.New("-email and -password are required")
	}

	if err := a.auth.Login(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", a.auth.User().Email)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.auth.Bootstrap(ctx); err != nil {
		// Local state is already cleared; nothing left to log out of.
		fmt.Println("Logged out")
		return nil
	}
	if a.auth.State() != auth.StateAuthenticated {
		fmt.Println("Not logged in")
		return nil
	}
	if err := a.auth.Logout(ctx); err != nil {
		// Best effort: the local session is gone either way.
		fmt.Println("Logged out locally (server unreachable)")
		return nil
	}
	fmt.Println("Logged out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	if err := a.requireAuth(ctx); err != nil {
		return err
	}
	u := a.auth.User()
	fmt.Printf("%s (id %d)\n", u.Email, u.ID)
	return nil
}

func (a *app) list(ctx context.Context) error {
	if err := a.requireAuth(ctx); err != nil {
		return err
	}
	if err := a.notes.Refresh(ctx); err != nil {
		return err
	}
	all := a.notes.Notes()
	if len(all) == 0 {
		fmt.Println("No notes yet. Create one with: notes create -title ... -content ...")
		return nil
	}
	for _, n := range all {
		fmt.Printf("[%d] %s\n    %s\n    updated %s\n", n.ID, n.Title, n.Content, n.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "Note title")
	content := fs.String("content", "", "Note content")
	fs.Parse(args)

	if err := a.requireAuth(ctx); err != nil {
		return err
	}
	note, err := a.notes.Create(ctx, *title, *content)
	if err != nil {
		return err
	}
	fmt.Printf("Created note %d\n", note.ID)
	return nil
}

func (a *app) update(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.Int("id", 0, "Note id")
	title := fs.String("title", "", "Note title")
	content := fs.String("content", "", "Note content")
	fs.Parse(args)
	if *id == 0 {
		return errors.New("-id is required")
	}

	if err := a.requireAuth(ctx); err != nil {
		return err
	}
	note, err := a.notes.Update(ctx, *id, *title, *content)
	if err != nil {
		return err
	}
	fmt.Printf("Updated note %d\n", note.ID)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.Int("id", 0, "Note id")
	fs.Parse(args)
	if *id == 0 {
		return errors.New("-id is required")
	}

	if err := a.requireAuth(ctx); err != nil {
		return err
	}
	if err := a.notes.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("Deleted note %d\n", *id)
	return nil
}

// requireAuth resolves the stored session before any authenticated
// command runs.
func (a *app) requireAuth(ctx context.Context) error {
	if err := a.auth.Bootstrap(ctx); err != nil {
		return err
	}
	if a.auth.State() != auth.StateAuthenticated {
		return errors.New("not logged in. Run: notes login -email ... -password ...")
	}
	return nil
}

func usage() {
	fmt.Println("Usage: notes <register|login|logout|whoami|list|create|update|delete> [flags]")
}
