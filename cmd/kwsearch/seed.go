package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/kwsearch/internal/domain"
	domuser "github.com/kailas-cloud/kwsearch/internal/domain/user"
)

var (
	seedFirstNames = []string{"Ada", "Alan", "Grace", "Linus", "Barbara", "Ken", "Margaret", "Dennis", "Frances", "Edsger"}
	seedLastNames  = []string{"Lovelace", "Turing", "Hopper", "Torvalds", "Liskov", "Thompson", "Hamilton", "Ritchie", "Allen", "Dijkstra"}
)

// seedDoes are always inserted first unless --no-does is given.
var seedDoes = [][2]string{
	{"doejohn", "John Doe"},
	{"doejane", "Jane Doe"},
	{"doejack", "Jack Doe"},
}

func newSeedCmd(opts *options) *cobra.Command {
	var (
		count  int
		noDoes bool
	)
	c := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample users",
		Long:  `Inserts John, Jane and Jack Doe followed by --count generated users. Existing usernames are skipped.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 0 {
				return fmt.Errorf("--count must not be negative")
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			var rows [][2]string
			if !noDoes {
				rows = append(rows, seedDoes...)
			}
			rows = append(rows, generatedUsers(count)...)

			start := time.Now().UTC().Add(-time.Duration(len(rows)) * time.Minute)
			inserted, skipped := 0, 0
			for i, r := range rows {
				u, err := domuser.New(r[0], r[1], r[0]+"@example.com", start.Add(time.Duration(i)*time.Minute))
				if err != nil {
					return fmt.Errorf("seed user %s: %w", r[0], err)
				}
				if _, err := a.users.Insert(ctx, u); err != nil {
					if errors.Is(err, domain.ErrAlreadyExists) {
						skipped++
						continue
					}
					return err
				}
				inserted++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users (%d skipped)\n", inserted, skipped)
			return nil
		},
	}
	c.Flags().IntVarP(&count, "count", "n", 100, "number of generated users")
	c.Flags().BoolVar(&noDoes, "no-does", false, "skip the Doe family")
	return c
}

// generatedUsers returns n deterministic username/name pairs.
func generatedUsers(n int) [][2]string {
	out := make([][2]string, n)
	for i := range out {
		first := seedFirstNames[i%len(seedFirstNames)]
		last := seedLastNames[(i/len(seedFirstNames))%len(seedLastNames)]
		out[i] = [2]string{fmt.Sprintf("user%04d", i), first + " " + last}
	}
	return out
}
