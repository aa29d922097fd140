package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fleet-console/fleet-console/internal/config"
	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Fleet and print an API token for FLEET_API_TOKEN.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		passwordStdin, _ := cmd.Flags().GetBool("password-stdin")
		return runLogin(cmd.OutOrStdout(), cmd.ErrOrStderr(), cmd.InOrStdin(), email, passwordStdin)
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Fleet user email")
	loginCmd.Flags().Bool("password-stdin", false, "Read the password from stdin instead of prompting")
	_ = loginCmd.MarkFlagRequired("email")
}

func runLogin(stdout, stderr io.Writer, stdin io.Reader, email string, passwordStdin bool) error {
	cfg, err := config.LoadWithoutToken()
	if err != nil {
		return err
	}

	password, err := readPassword(stderr, stdin, passwordStdin)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := fleetapi.NewUnauthenticated(cfg.FleetURL, cfg.FleetRequestTimeout)
	if err != nil {
		return err
	}
	result, err := client.Login(ctx, email, password)
	if err != nil {
		if fleetapi.IsStatus(err, http.StatusUnauthorized) {
			return errors.New("login failed: invalid email or password")
		}
		return err
	}

	fmt.Fprintf(stderr, "Logged in as %s.\n", result.User.Email)
	fmt.Fprintln(stdout, result.Token)
	return nil
}

// readPassword reads one line from stdin when fromStdin is set, and otherwise
// prompts on the terminal without echo.
func readPassword(prompt io.Writer, stdin io.Reader, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		password := strings.TrimRight(line, "\r\n")
		if password == "" {
			return "", usageError("--password-stdin was set but stdin was empty")
		}
		return password, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", usageError("stdin is not a terminal; use --password-stdin")
	}
	fmt.Fprint(prompt, "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
