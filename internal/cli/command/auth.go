package command

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/urfave/cli/v2"
)

// SignInCommand returns the sign-in command.
func SignInCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign-in",
		Usage: "Sign in and print the issued token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"TOKGATE_PASSWORD"}},
		},
		Action: func(c *cli.Context) error {
			resp, err := newClient(c).Post(c.Context, authPath(c, "/auth/sign_in"), map[string]string{
				"username": c.String("username"),
				"password": c.String("password"),
			})
			if err != nil {
				return err
			}
			return printResponse(c, resp)
		},
	}
}

// SignUpCommand returns the sign-up command.
func SignUpCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign-up",
		Usage: "Register a new user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"TOKGATE_PASSWORD"}},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			resp, err := newClient(c).Post(c.Context, authPath(c, "/auth/sign_up"), map[string]string{
				"username": c.String("username"),
				"password": c.String("password"),
				"email":    c.String("email"),
			})
			if err != nil {
				return err
			}
			return printResponse(c, resp)
		},
	}
}

// RefreshCommand returns the refresh command.
func RefreshCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Exchange --token for a new token",
		Action: func(c *cli.Context) error {
			if c.String("token") == "" {
				return cli.Exit("--token is required", 2)
			}
			resp, err := newClient(c).Post(c.Context, authPath(c, "/auth/refresh_token"), nil)
			if err != nil {
				return err
			}
			return printResponse(c, resp)
		},
	}
}

// CheckLoginCommand returns the check-login command.
func CheckLoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-login",
		Usage: "Show the user --token belongs to, if it is the live token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "method",
				Usage: "HTTP method: GET, POST, PUT or DELETE",
				Value: http.MethodGet,
			},
		},
		Action: func(c *cli.Context) error {
			method := strings.ToUpper(c.String("method"))
			switch method {
			case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
			default:
				return cli.Exit(fmt.Sprintf("unsupported method %q", method), 2)
			}

			resp, err := newClient(c).Do(c.Context, method, authPath(c, "/auth/check_login"), nil)
			if err != nil {
				return err
			}
			if resp.StatusCode == http.StatusUnauthorized {
				return cli.Exit("not signed in", 1)
			}
			return printResponse(c, resp)
		},
	}
}

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server health",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "ready", Usage: "query /ready instead of /health"},
		},
		Action: func(c *cli.Context) error {
			path := "/health"
			if c.Bool("ready") {
				path = "/ready"
			}
			resp, err := newClient(c).Get(c.Context, path)
			if err != nil {
				return err
			}
			return printResponse(c, resp)
		},
	}
}
