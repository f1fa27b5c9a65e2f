// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command kodiakctl is the operator CLI for a running kodiak server.
//
// Usage:
//
//	kodiakctl dashboard
//	kodiakctl analyze C10045
//	kodiakctl --server http://aml.internal:8080 dashboard
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/KodiakSystems/KodiakAML/services/dashboard"
	"github.com/KodiakSystems/KodiakAML/services/normalizer"
)

var serverURL string

func main() {
	root := &cobra.Command{
		Use:           "kodiakctl",
		Short:         "Operator CLI for the Kodiak AML monitoring server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "kodiak server base URL")

	root.AddCommand(newDashboardCmd())
	root.AddCommand(newAnalyzeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Fetch the dashboard overview result sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := httpClient().Get(serverURL + "/v1/aml/dashboard")
			if err != nil {
				return fmt.Errorf("fetching dashboard: %w", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return serverError(resp)
			}

			var data dashboard.DashboardResponse
			if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
				return fmt.Errorf("decoding dashboard response: %w", err)
			}
			renderDashboard(cmd.OutOrStdout(), &data)
			return nil
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <customer-id>",
		Short: "Run a single-customer AML analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, _ := json.Marshal(dashboard.AnalyzeRequest{CustomerID: args[0]})
			resp, err := httpClient().Post(
				serverURL+"/v1/aml/customers/analyze",
				"application/json",
				bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("requesting analysis: %w", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return serverError(resp)
			}

			var result normalizer.AnalysisResult
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return fmt.Errorf("decoding analysis response: %w", err)
			}
			renderAnalysis(cmd.OutOrStdout(), &result)
			return nil
		},
	}
}

func serverError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	var body dashboard.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Code != "" {
		return fmt.Errorf("server returned %s: %s (%s)", resp.Status, body.Error, body.Code)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}

func renderDashboard(out io.Writer, data *dashboard.DashboardResponse) {
	fmt.Fprintf(out, "High Risk Customers (%s)\n", data.Sources["highRiskCustomers"])
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CUSTOMER\tNAME\tEMAIL\tRISK SCORE")
	for _, c := range data.HighRiskCustomers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\n", c.CustomerID, c.CustomerName, c.Email, c.RiskScore)
	}
	w.Flush()

	fmt.Fprintf(out, "\nMultiple Location Activity (%s)\n", data.Sources["multipleLocations"])
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CUSTOMER\tNAME\tWINDOW\tLOCATIONS")
	for _, l := range data.MultipleLocations {
		fmt.Fprintf(w, "%s\t%s\t%s .. %s\t%d\n", l.CustomerID, l.CustomerName, l.StartTime, l.EndTime, l.LocationCount)
	}
	w.Flush()

	fmt.Fprintf(out, "\nLarge Transaction Counts (%s)\n", data.Sources["largeTransactions"])
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CUSTOMER\tNAME\tLARGE TXS")
	for _, l := range data.LargeTransactions {
		fmt.Fprintf(w, "%s\t%s\t%d\n", l.CustomerID, l.CustomerName, l.LargeTransactionCount)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFrequent Small Transfers (%s)\n", data.Sources["frequentTransactions"])
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CUSTOMER\tNAME\tCOUNT\tTOTAL")
	for _, f := range data.FrequentTransactions {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\n", f.CustomerID, f.CustomerName, f.TransactionCount, f.TotalAmount)
	}
	w.Flush()
}

func renderAnalysis(out io.Writer, result *normalizer.AnalysisResult) {
	p := result.Profile
	if p != nil {
		fmt.Fprintf(out, "Customer %s  %s\n", p.CustomerID, p.CustomerName)
		fmt.Fprintf(out, "  Location: %s  Email: %s  Phone: %s\n", p.PrimaryLocation, p.Email, p.Phone)
		fmt.Fprintf(out, "  Risk: %.0f (previous %.0f, threshold %.0f)\n", p.RiskScore, p.PreviousRiskScore, p.RiskThreshold)
		fmt.Fprintf(out, "  Transactions: %d  Avg amount: %.2f  Last activity: %s\n\n",
			p.TotalTransactions, p.AverageTransactionAmount, p.LastActivity)
	}

	fmt.Fprintln(out, "Risk Factors")
	for _, rf := range result.RiskFactors {
		fmt.Fprintf(out, "  [%s] %s: %s\n", rf.Severity, rf.Factor, rf.Description)
	}

	fmt.Fprintln(out, "\nRecent Transactions")
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tDATE\tAMOUNT\tDIRECTION\tCOUNTERPARTY\tLOCATION")
	for _, tx := range result.Transactions {
		counterparty, location := tx.SenderID, tx.SenderLocation
		if tx.Direction == normalizer.DirectionOutgoing {
			counterparty, location = tx.RecipientID, tx.RecipientLocation
		}
		fmt.Fprintf(w, "  %s\t%s\t%.2f\t%s\t%s\t%s\n",
			tx.TransactionID, tx.Date, tx.Amount, tx.Direction, counterparty, location)
	}
	w.Flush()
}
