package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/employee-admin/internal/client"
	"github.com/noah-isme/employee-admin/internal/console"
	"github.com/noah-isme/employee-admin/pkg/export"
	"github.com/noah-isme/employee-admin/pkg/storage"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			list, err := a.client().ListAll(ctx)
			if err != nil {
				return err
			}
			return a.printEmployees(list)
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			emp, err := a.client().GetByID(ctx, args[0])
			if errors.Is(err, client.ErrNotFound) {
				return errors.New(console.NotFoundAlert(args[0]))
			}
			if err != nil {
				return err
			}
			return a.printEmployee(emp)
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Find employees by first name, last name or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return errors.New("keyword must not be blank")
			}
			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			list, err := a.client().SearchByKeyword(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printEmployees(list)
		},
	}
}

func newDepartmentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "department <name>",
		Short: "List employees of one department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return errors.New("department must not be blank")
			}
			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			list, err := a.client().ListByDepartment(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printEmployees(list)
		},
	}
}

// draftFlags maps CLI flags onto the form's field names.
var draftFlags = []struct{ flag, field, usage string }{
	{"first-name", "firstName", "first name"},
	{"last-name", "lastName", "last name"},
	{"email", "email", "email address"},
	{"department", "department", "department"},
	{"position", "position", "position"},
	{"salary", "salary", "salary, commas allowed"},
	{"hire-date", "hireDate", "hire date as YYYY-MM-DD"},
	{"phone", "phone", "phone number"},
}

func addDraftFlags(cmd *cobra.Command) {
	for _, f := range draftFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
}

func applyDraftFlags(cmd *cobra.Command, form *console.FormController) error {
	for _, f := range draftFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		value, _ := cmd.Flags().GetString(f.flag)
		if err := form.SetField(f.field, value); err != nil {
			return fmt.Errorf("--%s: %w", f.flag, err)
		}
	}
	return nil
}

func newCreateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create --first-name <name> --last-name <name> --email <email> [flags]",
		Short: "Create an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := a.form()
			form.OpenCreate()
			if err := applyDraftFlags(cmd, form); err != nil {
				return err
			}
			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			saved, err := form.Submit(ctx)
			if err != nil {
				return explain(err)
			}
			return a.printEmployee(saved)
		},
	}
	addDraftFlags(cmd)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id> [flags]",
		Short: "Change fields of an existing employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.requestContext(cmd)
			defer cancel()

			current, err := a.client().GetByID(ctx, args[0])
			if errors.Is(err, client.ErrNotFound) {
				return errors.New(console.NotFoundAlert(args[0]))
			}
			if err != nil {
				return err
			}

			form := a.form()
			form.OpenEdit(*current)
			if err := applyDraftFlags(cmd, form); err != nil {
				return err
			}
			saved, err := form.Submit(ctx)
			if err != nil {
				return explain(err)
			}
			return a.printEmployee(saved)
		},
	}
	addDraftFlags(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := console.ConfirmFunc(func(message string) bool {
				if yes {
					return true
				}
				fmt.Fprintf(a.out, "%s [y/N] ", message)
				answer, _ := bufio.NewReader(a.in).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				return answer == "y" || answer == "yes"
			})

			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			deleted, err := a.form().Delete(ctx, args[0], confirm)
			if errors.Is(err, client.ErrNotFound) {
				return errors.New(console.NotFoundAlert(args[0]))
			}
			if err != nil {
				return err
			}
			if !deleted {
				_, err = fmt.Fprintln(a.out, "Delete cancelled")
				return err
			}
			_, err = fmt.Fprintf(a.out, "Deleted employee %s\n", args[0])
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		excel  bool
		prune  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every employee to a CSV or PDF file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "csv" && format != "pdf" {
				return fmt.Errorf("unsupported format %q, use csv or pdf", format)
			}

			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			list, err := a.client().ListAll(ctx)
			if err != nil {
				return err
			}

			var data []byte
			if format == "csv" {
				var opts []export.CSVOption
				if excel {
					opts = append(opts, export.WithBOM())
				}
				data, err = export.NewCSVExporter(opts...).Render(export.EmployeeDataset(list, export.PlainSalary))
			} else {
				data, err = export.NewPDFExporter().Render(export.EmployeeDataset(list, console.FormatSalary), "Employees")
			}
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}

			store, err := storage.NewLocalStorage(a.exportDir)
			if err != nil {
				return err
			}
			path, err := store.Save(storage.ExportName("employees", format, a.now()), data)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(a.out, "Exported %d employees to %s\n", len(list), path); err != nil {
				return err
			}
			if prune <= 0 {
				return nil
			}
			removed, err := store.CleanupOlderThan(prune)
			if err != nil {
				return err
			}
			for _, name := range removed {
				fmt.Fprintf(a.out, "Removed old export %s\n", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or pdf")
	cmd.Flags().BoolVar(&excel, "excel", false, "prefix CSV output with a UTF-8 BOM for spreadsheet apps")
	cmd.Flags().DurationVar(&prune, "prune-older-than", 0, "also delete exports older than this, e.g. 720h")
	cmd.Flags().StringVar(&a.exportDir, "dir", a.exportDir, "directory the export is written to")
	return cmd
}
