package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// quotectl is a small operator CLI against the fieldquote API: enqueue a
// concept render for a quote, poll its status, or run an ad-hoc estimate.

var (
	baseURL   string
	tenantKey string
)

func main() {
	root := &cobra.Command{
		Use:          "quotectl",
		Short:        "Operator CLI for the fieldquote API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&baseURL, "api", envOr("FIELDQUOTE_API", "http://localhost:8080"), "API base URL")
	root.PersistentFlags().StringVar(&tenantKey, "tenant", "", "tenant slug or id")
	_ = root.MarkPersistentFlagRequired("tenant")

	root.AddCommand(renderCmd(), statusCmd(), estimateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <quote-id>",
		Short: "Enqueue a concept render for a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return post(fmt.Sprintf("%s/v1/tenants/%s/quotes/%s/render", baseURL, tenantKey, args[0]), nil)
		},
	}
}

func statusCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "status <quote-id>",
		Short: "Show the projected render status for a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/v1/tenants/%s/quotes/%s/render", baseURL, tenantKey, args[0])
			for {
				body, err := get(url)
				if err != nil {
					return err
				}
				fmt.Println(body)
				if !watch {
					return nil
				}
				var projection struct {
					Status string `json:"status"`
				}
				if err := json.Unmarshal([]byte(body), &projection); err == nil {
					if projection.Status == "rendered" || projection.Status == "failed" {
						return nil
					}
				}
				time.Sleep(2 * time.Second)
			}
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "poll until the render reaches a terminal state")
	return cmd
}

func estimateCmd() *cobra.Command {
	var assessmentPath string
	var imageCount int
	cmd := &cobra.Command{
		Use:   "estimate <quote-id>",
		Short: "Run the pricing engine over an assessment file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(assessmentPath)
			if err != nil {
				return fmt.Errorf("read assessment: %w", err)
			}
			payload := map[string]any{
				"assessment":  json.RawMessage(raw),
				"image_count": imageCount,
			}
			body, err := json.Marshal(payload)
			if err != nil {
				return err
			}
			return post(fmt.Sprintf("%s/v1/tenants/%s/quotes/%s/estimate", baseURL, tenantKey, args[0]), body)
		},
	}
	cmd.Flags().StringVar(&assessmentPath, "assessment", "", "path to an assessment JSON file")
	cmd.Flags().IntVar(&imageCount, "images", 0, "submitted photo count")
	_ = cmd.MarkFlagRequired("assessment")
	return cmd
}

func post(url string, body []byte) error {
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func get(url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("api status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	return string(bytes.TrimSpace(data)), nil
}

func printResponse(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("api status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	fmt.Println(string(bytes.TrimSpace(data)))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
