package main

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var (
	apiFlag string
	rootCmd = &cobra.Command{
		Use:   "timerctl",
		Short: "CLI client for the timer service REST API",
	}
)

func client() *resty.Client {
	return resty.New().SetBaseURL(apiFlag)
}

// printResult prints the response body and surfaces non-2xx statuses as
// errors so scripts can rely on the exit code.
func printResult(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, string(resp.Body()))
	if resp.IsError() {
		return fmt.Errorf("request failed: %s", resp.Status())
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Timer service base URL")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
