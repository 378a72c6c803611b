package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/employee-admin/internal/client"
	"github.com/noah-isme/employee-admin/internal/console"
	"github.com/noah-isme/employee-admin/internal/models"
)

type app struct {
	apiURL    string
	exportDir string
	timeout   time.Duration
	jsonOut   bool

	in     io.Reader
	out    io.Writer
	logger *zap.Logger
	now    func() time.Time
}

func newApp(apiURL, exportDir string, logger *zap.Logger) *app {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &app{
		apiURL:    apiURL,
		exportDir: exportDir,
		timeout:   15 * time.Second,
		in:        os.Stdin,
		out:       os.Stdout,
		logger:    logger,
		now:       time.Now,
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "employeectl",
		Short:         "Manage employee records through the employee API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(a.out)
	cmd.SetIn(a.in)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", a.apiURL, "employee API base URL")
	flags.DurationVar(&a.timeout, "timeout", a.timeout, "per-command request timeout")
	flags.BoolVar(&a.jsonOut, "json", false, "print employees as JSON")

	cmd.AddCommand(
		newListCmd(a),
		newGetCmd(a),
		newSearchCmd(a),
		newDepartmentCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
	)
	return cmd
}

func (a *app) client() *client.Client {
	return client.New(a.apiURL, client.WithLogger(a.logger.Named("client")))
}

func (a *app) form() *console.FormController {
	return console.NewFormController(a.client(), validator.New(), a.logger.Named("form"))
}

func (a *app) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *app) printEmployees(list []models.Employee) error {
	if a.jsonOut {
		if list == nil {
			list = []models.Employee{}
		}
		return a.printJSON(list)
	}
	if len(list) == 0 {
		_, err := fmt.Fprintln(a.out, "No employees found")
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tDEPARTMENT\tPOSITION\tSALARY")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.FullName(), e.Email, e.Department, e.Position, console.FormatSalary(e.Salary))
	}
	return tw.Flush()
}

func (a *app) printEmployee(e *models.Employee) error {
	if a.jsonOut {
		return a.printJSON(e)
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", e.ID},
		{"Name", e.FullName()},
		{"Email", e.Email},
		{"Department", e.Department},
		{"Position", e.Position},
		{"Salary", console.FormatSalary(e.Salary)},
		{"Hire date", e.HireDate},
		{"Phone", e.Phone},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// explain rewrites a submit failure so field problems read like the console form.
func explain(err error) error {
	if problems := console.DraftProblems(err); len(problems) > 0 {
		return fmt.Errorf("invalid employee: %s", strings.Join(problems, "; "))
	}
	return err
}
