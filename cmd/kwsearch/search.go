package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/kwsearch/internal/domain/search/request"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/result"
	domuser "github.com/kailas-cloud/kwsearch/internal/domain/user"
)

func newSearchCmd(opts *options) *cobra.Command {
	var (
		orderBy []string
		perPage string
		page    string
		asJSON  bool
	)
	c := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search users",
		Long: `Runs a keyword query against the user table.

Keywords: username, first_name, last_name, email, id. Prefix a keyword with
"-" to exclude matches; separate alternatives with commas:

  kwsearch search 'first_name:john,jane last_name:doe' --order-by 'created_at desc'

An empty QUERY ('') matches every user.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.userSearch()
			if err != nil {
				return err
			}

			p := request.Params{Query: args[0]}
			if len(orderBy) > 0 {
				p.OrderBy = orderBy
			}
			if cmd.Flags().Changed("per-page") {
				p.PerPage = perPage
			}
			if cmd.Flags().Changed("page") {
				p.Page = page
			}

			out, err := svc.Search(ctx, p)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				if err := printJSON(w, out); err != nil {
					return err
				}
			} else {
				printTable(w, out)
			}
			if out.Failed() {
				return fmt.Errorf("search failed: %s", joinCodes(out.Errors))
			}
			return nil
		},
	}
	c.Flags().StringArrayVarP(&orderBy, "order-by", "o", nil, `sort term such as "created_at desc" (repeatable)`)
	c.Flags().StringVar(&perPage, "per-page", "", "page size")
	c.Flags().StringVarP(&page, "page", "p", "", "page number, starting at 1")
	c.Flags().BoolVar(&asJSON, "json", false, "print the result envelope as JSON")
	return c
}

type jsonUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type jsonError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Fatal   bool           `json:"fatal"`
}

func printJSON(w io.Writer, page result.Page[domuser.User]) error {
	users := make([]jsonUser, len(page.Items))
	for i, u := range page.Items {
		users[i] = jsonUser{u.ID(), u.Username(), u.Name(), u.Email(), u.CreatedAt()}
	}
	errs := make([]jsonError, len(page.Errors))
	for i, e := range page.Errors {
		errs[i] = jsonError{string(e.Code), e.Message, e.Data, e.Fatal}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"items":       users,
		"total_count": page.TotalCount,
		"errors":      errs,
	})
}

func printTable(w io.Writer, page result.Page[domuser.User]) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL\tCREATED")
	for _, u := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			u.ID(), u.Username(), u.Name(), u.Email(), u.CreatedAt().Format(time.RFC3339))
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\n%d shown, %d matching\n", len(page.Items), page.TotalCount)
	for _, e := range page.Errors {
		fmt.Fprintf(w, "%s: %s\n", e.Code, e.Message)
	}
}

func joinCodes(errs result.Errors) string {
	codes := make([]string, len(errs))
	for i, c := range errs.Codes() {
		codes[i] = string(c)
	}
	return strings.Join(codes, ", ")
}
