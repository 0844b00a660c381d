package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/csvchat/internal/api"
)

var askCmd = &cobra.Command{
	Use:   "ask <query...>",
	Short: "Answer a single query",
	Long: `Answer a single query, locally or against a running server.

Examples:
  csvchat ask total sales
  csvchat ask --server http://127.0.0.1:8000 show data for CORN crop`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		asJSON, _ := cmd.Flags().GetBool("json")
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var resp api.ChatResponse
		if serverURL, _ := cmd.Flags().GetString("server"); serverURL != "" {
			client := newAPIClient(serverURL, cfg.Server.APIToken)
			if resp, err = client.chat(ctx, text); err != nil {
				return err
			}
		} else {
			interp, err := openInterpreter(ctx, cfg)
			if err != nil {
				return err
			}
			res := interp.Interpret(text)
			if !asJSON {
				fmt.Println(res.String())
				return nil
			}
			resp = api.ChatResponse{Intent: res.Intent, Response: res.Response(), Data: res.Data, Text: res.String()}
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}
		fmt.Println(answerText(resp))
		return nil
	},
}

// answerText prefers the server's full rendering, falling back to the short
// response for servers that do not send one.
func answerText(resp api.ChatResponse) string {
	if resp.Text != "" {
		return resp.Text
	}
	return resp.Response
}

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "List the distinct values of the lookup columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var meta map[string][]string
		if serverURL, _ := cmd.Flags().GetString("server"); serverURL != "" {
			if meta, err = newAPIClient(serverURL, cfg.Server.APIToken).metadata(ctx); err != nil {
				return err
			}
		} else {
			interp, err := openInterpreter(ctx, cfg)
			if err != nil {
				return err
			}
			meta = interp.Metadata()
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		}
		printMetadata(meta)
		return nil
	},
}

func printMetadata(meta map[string][]string) {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s (%d)\n", colorize(colorBold, k), len(meta[k]))
		for _, v := range meta[k] {
			fmt.Printf("  %s\n", v)
		}
	}
}

func init() {
	askCmd.Flags().String("server", "", "query a running csvchat server at this URL instead of loading the dataset")
	askCmd.Flags().Bool("json", false, "print the full JSON response")
	metadataCmd.Flags().String("server", "", "read metadata from a running csvchat server at this URL")
	metadataCmd.Flags().Bool("json", false, "print as JSON")
}
