package command

import (
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokgate/internal/cli/connection"
	"github.com/yndnr/tokgate/internal/cli/output"
	"github.com/yndnr/tokgate/internal/infra/buildinfo"
	"github.com/yndnr/tokgate/internal/infra/tlsroots"
)

// tlsConfigKey holds the --ca-file TLS config in App.Metadata.
const tlsConfigKey = "tls-config"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "tokgate-cli",
		Usage:   "tokgate command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SignInCommand(),
			SignUpCommand(),
			RefreshCommand(),
			CheckLoginCommand(),
			HealthCommand(),
		},
		Before: before,
	}
}

// before validates the global flags and loads the CA file once.
func before(c *cli.Context) error {
	if _, err := output.ParseFormat(c.String("output")); err != nil {
		return err
	}

	caFile := c.String("ca-file")
	if caFile == "" {
		return nil
	}
	tlsCfg, err := tlsroots.ClientConfig(caFile)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[tlsConfigKey] = tlsCfg
	return nil
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "tokgate server base URL",
			EnvVars: []string{"TOKGATE_SERVER"},
			Value:   "http://127.0.0.1:8080",
		},
		&cli.StringFlag{
			Name:    "path-prefix",
			Usage:   "prefix the server mounts auth routes under, e.g. /api",
			EnvVars: []string{"TOKGATE_PATH_PREFIX"},
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "session token sent as the token cookie",
			EnvVars: []string{"TOKGATE_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: raw, json, yaml",
			Value:   string(output.FormatRaw),
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM file of extra CAs trusted for https:// servers",
			EnvVars: []string{"TOKGATE_CA_FILE"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "request timeout",
			Value: connection.DefaultTimeout,
		},
	}
}

// authPath joins the configured path prefix and an auth route.
func authPath(c *cli.Context, route string) string {
	return strings.TrimSuffix(c.String("path-prefix"), "/") + route
}

// newClient builds the HTTP client from the global flags.
func newClient(c *cli.Context) *connection.HTTPClient {
	opts := []connection.Option{
		connection.WithToken(c.String("token")),
		connection.WithTimeout(c.Duration("timeout")),
	}
	if tlsCfg, ok := c.App.Metadata[tlsConfigKey].(*tls.Config); ok {
		opts = append(opts, connection.WithTLSConfig(tlsCfg))
	}
	return connection.NewHTTPClient(c.String("server"), opts...)
}

// printResponse writes the body in the selected format and turns non-2xx
// statuses into a non-zero exit.
func printResponse(c *cli.Context, resp *connection.Response) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}

	var data any = resp.Body
	if resp.IsJSON() && format != output.FormatRaw {
		if decoded, err := output.DecodeJSON(resp.Body); err == nil {
			data = decoded
		}
	}
	if len(resp.Body) > 0 {
		if err := output.NewFormatter(format).Format(c.App.Writer, data); err != nil {
			return fmt.Errorf("format output: %w", err)
		}
	}

	if !resp.OK() {
		return cli.Exit(fmt.Sprintf("server returned %d", resp.StatusCode), 1)
	}
	return nil
}
