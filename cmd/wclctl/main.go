package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"text/tabwriter"
	"time"
	"wcl-enricher/internal/domain"
	"wcl-enricher/internal/rpc/adminv1"

	"connectrpc.com/connect"
	"github.com/urfave/cli/v3"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "wclctl",
		Usage: "Admin client for the Warcraft Logs player card service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://127.0.0.1:8080",
				Usage:   "base URL of the card service",
				Sources: cli.EnvVars("WCLCTL_SERVER"),
			},
			&cli.DurationFlag{Name: "timeout", Value: 45 * time.Second, Usage: "per call timeout"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Commands: []*cli.Command{
			enrichCommand(),
			cacheCommand(),
			tierCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

func newClient(c *cli.Command) *adminv1.AdminServiceClient {
	httpClient := &http.Client{Timeout: c.Duration("timeout")}
	return adminv1.NewAdminServiceClient(httpClient, c.String("server"))
}

func enrichCommand() *cli.Command {
	return &cli.Command{
		Name:      "enrich",
		Usage:     "Fetch the player card for a Warcraft Logs character URL",
		ArgsUsage: "<warcraftlogs-url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "season", Usage: "season key (default latest)"},
			&cli.BoolFlag{Name: "refresh", Usage: "skip the cache and fetch from Warcraft Logs"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			url := c.Args().First()
			if url == "" {
				return errors.New("a warcraft logs character url is required")
			}

			resp, err := newClient(c).Enrich(ctx, connect.NewRequest(&adminv1.EnrichRequest{
				WarcraftLogsURL: url,
				SeasonKey:       c.String("season"),
				ForceRefresh:    c.Bool("refresh"),
			}))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(resp.Msg)
			}
			printCard(resp.Msg)
			return nil
		},
	}
}

func cacheCommand() *cli.Command {
	identityFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{Name: "region", Required: true},
			&cli.StringFlag{Name: "realm", Required: true},
			&cli.StringFlag{Name: "name", Required: true},
		}
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and evict cached player cards",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached cards of a character across seasons",
				Flags: identityFlags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					resp, err := newClient(c).ListCacheEntries(ctx, connect.NewRequest(&adminv1.ListCacheEntriesRequest{
						Region:        c.String("region"),
						Realm:         c.String("realm"),
						CharacterName: c.String("name"),
					}))
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(resp.Msg)
					}

					tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "SEASON\tSTATUS\tUPDATED\tLAST FETCH\tERROR")
					for _, e := range resp.Msg.Entries {
						fetched := "-"
						if e.WCLFetchedAt != nil {
							fetched = e.WCLFetchedAt.Local().Format(time.DateTime)
						}
						errMsg := ""
						if e.ErrorMessage != nil {
							errMsg = *e.ErrorMessage
						}
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.SeasonKey, e.FetchStatus, e.UpdatedAt.Local().Format(time.DateTime), fetched, errMsg)
					}
					return tw.Flush()
				},
			},
			{
				Name:  "delete",
				Usage: "Evict one cached card",
				Flags: append(identityFlags(), &cli.StringFlag{Name: "season", Usage: "season key (default latest)"}),
				Action: func(ctx context.Context, c *cli.Command) error {
					_, err := newClient(c).DeleteCacheEntry(ctx, connect.NewRequest(&adminv1.DeleteCacheEntryRequest{
						Region:        c.String("region"),
						Realm:         c.String("realm"),
						CharacterName: c.String("name"),
						SeasonKey:     c.String("season"),
					}))
					if err != nil {
						return err
					}
					fmt.Println("cache entry deleted")
					return nil
				},
			},
		},
	}
}

func tierCommand() *cli.Command {
	return &cli.Command{
		Name:  "tier",
		Usage: "Manage raid tier configurations",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import a tier from a Warcraft Logs zone",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "zone", Required: true, Usage: "Warcraft Logs zone id"},
					&cli.BoolFlag{Name: "activate", Usage: "make the imported tier active"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					resp, err := newClient(c).ImportTier(ctx, connect.NewRequest(&adminv1.ImportTierRequest{
						ZoneID:   int(c.Int("zone")),
						Activate: c.Bool("activate"),
					}))
					if err != nil {
						return err
					}
					return printTier(c, resp.Msg.Tier)
				},
			},
			{
				Name:      "activate",
				Usage:     "Make a tier the active one",
				ArgsUsage: "<tier-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id := c.Args().First()
					if id == "" {
						return errors.New("a tier id is required")
					}
					resp, err := newClient(c).ActivateTier(ctx, connect.NewRequest(&adminv1.ActivateTierRequest{ID: id}))
					if err != nil {
						return err
					}
					return printTier(c, resp.Msg.Tier)
				},
			},
			{
				Name:  "active",
				Usage: "Show the active tier",
				Action: func(ctx context.Context, c *cli.Command) error {
					resp, err := newClient(c).GetActiveTier(ctx, connect.NewRequest(&adminv1.GetActiveTierRequest{}))
					if err != nil {
						return err
					}
					if resp.Msg.Tier == nil {
						fmt.Println("no active tier")
						return nil
					}
					return printTier(c, resp.Msg.Tier)
				},
			},
			{
				Name:  "list",
				Usage: "List all tiers",
				Action: func(ctx context.Context, c *cli.Command) error {
					resp, err := newClient(c).ListTiers(ctx, connect.NewRequest(&adminv1.ListTiersRequest{}))
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(resp.Msg)
					}

					tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tZONE\tNAME\tENCOUNTERS\tACTIVE")
					for _, t := range resp.Msg.Tiers {
						fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%t\n", t.ID, t.ZoneID, t.ZoneName, len(t.EncounterOrder), t.IsActive)
					}
					return tw.Flush()
				},
			},
		},
	}
}

func printTier(c *cli.Command, tier *domain.TierConfig) error {
	if c.Bool("json") {
		return printJSON(tier)
	}
	fmt.Printf("%s  zone %d (%s)  active=%t\n", tier.ID, tier.ZoneID, tier.ZoneName, tier.IsActive)
	for i, id := range tier.EncounterOrder {
		fmt.Printf("  %2d. %s (%d)\n", i+1, tier.EncounterNames[id], id)
	}
	return nil
}

func printCard(resp *adminv1.EnrichResponse) {
	card := resp.Card
	fmt.Printf("%s-%s (%s)  [%s, %s]\n", card.CharacterName, card.Realm, card.Region, resp.Source, card.FetchStatus)
	if card.ClassSpec != nil {
		fmt.Printf("  spec:      %s\n", *card.ClassSpec)
	} else if card.Class != nil {
		fmt.Printf("  class:     %s\n", *card.Class)
	}
	if card.Role != nil {
		fmt.Printf("  role:      %s\n", *card.Role)
	}
	if card.BestKill != nil {
		fmt.Printf("  best kill: %s %s (boss #%d)\n", card.BestKill.Difficulty, card.BestKill.BossName, card.BestKill.EncounterOrderIndex+1)
	}
	if card.TopRanking != nil {
		fmt.Printf("  top parse: %.1f on %s %s\n", card.TopRanking.RankPercent, card.TopRanking.Difficulty, card.TopRanking.EncounterName)
	}
	if card.ErrorMessage != nil {
		fmt.Printf("  error:     %s\n", *card.ErrorMessage)
	}
	if resp.Message != "" {
		fmt.Printf("  note:      %s\n", resp.Message)
	}
	fmt.Printf("  updated:   %s\n", card.UpdatedAt.Local().Format(time.DateTime))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
