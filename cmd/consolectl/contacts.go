package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voice-console/internal/importer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List, import and export contacts",
}

var contactsListID string

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts, optionally of one list",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		s, err := a.currentSession(cmd.Context())
		if err != nil {
			return err
		}
		contacts, err := a.client.For(s).Contacts(cmd.Context(), contactsListID)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), map[string]interface{}{"contacts": contacts})
	},
}

var contactsImportCmd = &cobra.Command{
	Use:   "import <file.csv|file.xlsx>",
	Short: "Import contacts from a CSV or spreadsheet",
	Long:  "CSV files are parsed locally (name and phone columns, rows missing either are skipped) and bulk-created. Spreadsheets are uploaded to the backend as-is.",
	Args:  cobra.ExactArgs(1),
	RunE:  runContactsImport,
}

var contactsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write contacts as CSV to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		s, err := a.currentSession(cmd.Context())
		if err != nil {
			return err
		}
		contacts, err := a.client.For(s).Contacts(cmd.Context(), contactsListID)
		if err != nil {
			return err
		}
		return importer.WriteCSV(cmd.OutOrStdout(), contacts)
	},
}

func init() {
	for _, c := range []*cobra.Command{contactsListCmd, contactsImportCmd, contactsExportCmd} {
		c.Flags().StringVar(&contactsListID, "list", "", "contact list id")
	}
	contactsCmd.AddCommand(contactsListCmd, contactsImportCmd, contactsExportCmd)
}

func runContactsImport(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	s, err := a.currentSession(cmd.Context())
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	gw := a.client.For(s)
	switch strings.ToLower(filepath.Ext(args[0])) {
	case ".xlsx", ".xls":
		out, err := gw.ImportExcel(cmd.Context(), filepath.Base(args[0]), f)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), map[string]interface{}{"result": rawOrNull(out)})
	case ".csv":
	default:
		return fmt.Errorf("unsupported file type %q", filepath.Ext(args[0]))
	}

	res, err := importer.ParseCSV(f, tenantOf(s), contactsListID)
	if err != nil {
		return err
	}
	if len(res.Contacts) == 0 {
		return fmt.Errorf("no rows with both name and phone (%d skipped)", res.Skipped)
	}
	out, err := gw.BulkCreateContacts(cmd.Context(), res.Contacts)
	if err != nil {
		return err
	}
	a.logger.Info("contacts imported", zap.String("session_id", s.ID), zap.Int("imported", len(res.Contacts)), zap.Int("skipped", res.Skipped))
	return render(cmd.OutOrStdout(), map[string]interface{}{"imported": len(res.Contacts), "skipped": res.Skipped, "result": rawOrNull(out)})
}
