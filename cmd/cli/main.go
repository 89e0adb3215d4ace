package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// apiClient calls the ledger HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

// do sends body as JSON when it is not nil and returns the raw response
// body. Non-2xx responses are returned as errors.
func (c *apiClient) do(method, path string, query url.Values, body any, headers map[string]string) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return respBody, fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, bytes.TrimSpace(respBody))
	}

	return respBody, nil
}

func newRootCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)
	client := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "assetledger-cli",
		Short:         "AssetLedger CLI tool",
		Long:          `A command line interface for interacting with the AssetLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client.baseURL = baseURL
			client.http = &http.Client{Timeout: timeout}
		},
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the AssetLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		initCmd(client),
		fundCmd(client),
		transferCmd(client),
		balanceCmd(client),
		transactionsCmd(client),
		reconcileCmd(client),
		consistencyCmd(client),
	)

	return rootCmd
}

func initCmd(client *apiClient) *cobra.Command {
	var owner, asset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the ASSET balance records of an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client.do(http.MethodPost, "/api/v1/init", nil, map[string]string{
				"owner": owner,
				"asset": asset,
			}, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner id")
	cmd.Flags().StringVar(&asset, "asset", "GEM", "Asset name")
	cmd.MarkFlagRequired("owner")

	return cmd
}

func fundCmd(client *apiClient) *cobra.Command {
	var to, asset, amount, key string

	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Mint an amount of an asset to an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client.do(http.MethodPost, "/api/v1/fund", nil, map[string]json.RawMessage{
				"to":     quote(to),
				"asset":  quote(asset),
				"amount": quote(amount),
			}, map[string]string{"Idempotency-Key": key})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Receiving owner id")
	cmd.Flags().StringVar(&asset, "asset", "GEM", "Asset name")
	cmd.Flags().StringVar(&amount, "amount", "", "Decimal amount")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Idempotency key, used as the txid")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func transferCmd(client *apiClient) *cobra.Command {
	var from, to, asset, amount, key string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move an amount of an asset between owners",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client.do(http.MethodPost, "/api/v1/transfer", nil, map[string]json.RawMessage{
				"from":   quote(from),
				"to":     quote(to),
				"asset":  quote(asset),
				"amount": quote(amount),
			}, map[string]string{"Idempotency-Key": key})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Sending owner id")
	cmd.Flags().StringVar(&to, "to", "", "Receiving owner id")
	cmd.Flags().StringVar(&asset, "asset", "GEM", "Asset name")
	cmd.Flags().StringVar(&amount, "amount", "", "Decimal amount")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Idempotency key, used as the txid")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func balanceCmd(client *apiClient) *cobra.Command {
	var owner, asset, account string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the DR and CR records of an owner and their net",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client.do(http.MethodGet, "/api/v1/balance", url.Values{
				"owner":   {owner},
				"asset":   {asset},
				"account": {account},
			}, nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner id")
	cmd.Flags().StringVar(&asset, "asset", "GEM", "Asset name")
	cmd.Flags().StringVar(&account, "account", "ASSET", "Account type")
	cmd.MarkFlagRequired("owner")

	return cmd
}

func transactionsCmd(client *apiClient) *cobra.Command {
	var owner, asset, account string
	var limit int

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List the legs of an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{
				"uid":     {owner},
				"asset":   {asset},
				"account": {account},
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}

			body, err := client.do(http.MethodGet, "/api/v1/transactions", query, nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner id")
	cmd.Flags().StringVar(&asset, "asset", "GEM", "Asset name")
	cmd.Flags().StringVar(&account, "account", "ASSET", "Account type")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of legs (0 for the server default)")
	cmd.MarkFlagRequired("owner")

	return cmd
}

func reconcileCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <txid>",
		Short: "Re-apply the projection of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client.do(http.MethodPost, "/api/v1/reconcile/"+url.PathEscape(args[0]), nil, nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
}

func consistencyCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check that total debits equal total credits",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client.do(http.MethodGet, "/api/v1/ledger/consistency", nil, nil, nil)
			if err != nil {
				return fmt.Errorf("consistency check FAILED: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Consistency check PASSED")
			return printJSON(out, body)
		},
	}
}

// quote encodes s as a JSON string. Amounts are sent as strings so that
// decimals keep their exact digits.
func quote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

func printJSON(w io.Writer, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, string(body))
		return err
	}
	_, err := fmt.Fprintln(w, buf.String())
	return err
}
