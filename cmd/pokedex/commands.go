// Path: cmd/pokedex/commands.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pokedex/internal/domain"
	"pokedex/internal/search"
)

func newShowCmd(configPath *string) *cobra.Command {
	var asJSON, shiny bool
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show the details of one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid id %q", args[0])
			}
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			detail, err := a.service.Detail(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("show %d: %w", id, err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), detail)
			}
			printDetail(cmd.OutOrStdout(), detail, shiny)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&shiny, "shiny", false, "show the shiny artwork")
	return cmd
}

func newSearchCmd(configPath *string) *cobra.Command {
	var (
		page   int
		lookup bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search the catalog by name",
		Long: `Lists catalog entries whose name contains the text, ignoring case and
accents. With --lookup, resolves a single entry by exact name or id instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()
			out := cmd.OutOrStdout()

			if lookup {
				entity, err := a.service.Lookup(cmd.Context(), search.Normalize(query))
				if err != nil {
					return fmt.Errorf("lookup %q: %w", query, err)
				}
				if asJSON {
					return writeJSON(out, entity)
				}
				printEntities(out, []domain.CatalogEntity{entity})
				return nil
			}

			if err := a.service.RefreshCatalog(cmd.Context()); err != nil {
				return err
			}
			p := search.BuildPage(a.service.Catalog(), search.Normalize(query), page, a.cfg.Search.PageSize)
			if asJSON {
				return writeJSON(out, p)
			}
			printEntities(out, p.Items)
			fmt.Fprintf(out, "page %d/%d, %d result(s)\n", p.Page, p.PageCount, p.Total)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "result page")
	cmd.Flags().BoolVar(&lookup, "lookup", false, "resolve a single entry by name or id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newFavoritesCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List or toggle favorites",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List favorites in the order they were added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()
			favs := a.service.Favorites()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), favs)
			}
			if len(favs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no favorites")
				return nil
			}
			printEntities(cmd.OutOrStdout(), favs)
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	toggle := &cobra.Command{
		Use:   "toggle [id]",
		Short: "Add or remove a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid id %q", args[0])
			}
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			added, err := a.service.ToggleFavorite(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("toggle %d: %w", id, err)
			}
			verb := "removed"
			if added {
				verb = "added"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, domain.FallbackName(id))
			return nil
		},
	}

	cmd.AddCommand(list, toggle)
	return cmd
}

func newThemeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the display theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if len(args) == 1 {
				switch args[0] {
				case "dark":
					err = a.theme.SetDarkMode(cmd.Context(), true)
				case "light":
					err = a.theme.SetDarkMode(cmd.Context(), false)
				case "toggle":
					_, err = a.theme.ToggleDarkMode(cmd.Context())
				}
				if err != nil {
					return err
				}
			}
			mode := "light"
			if a.theme.DarkMode() {
				mode = "dark"
			}
			fmt.Fprintln(cmd.OutOrStdout(), mode)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func typeNames(types []domain.TypeTag) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name
	}
	return strings.Join(names, "/")
}

func printEntities(w io.Writer, entities []domain.CatalogEntity) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entities {
		fmt.Fprintf(tw, "#%d\t%s\t%s\n", e.ID, e.DisplayName, typeNames(e.Types))
	}
	tw.Flush()
}

func printDetail(w io.Writer, d domain.Detail, shiny bool) {
	e := d.Entity
	star := ""
	if d.Favorite {
		star = " ★"
	}
	fmt.Fprintf(w, "#%d %s%s\n", e.ID, e.DisplayName, star)
	if sprite := e.Sprites.Pick(shiny); sprite != "" {
		fmt.Fprintf(w, "Sprite: %s\n", sprite)
	}
	if len(e.Types) > 0 {
		fmt.Fprintf(w, "Types: %s\n", typeNames(e.Types))
	}
	if len(e.Abilities) > 0 {
		fmt.Fprintf(w, "Abilities: %s\n", strings.Join(e.Abilities, ", "))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range e.Stats {
		fmt.Fprintf(tw, "  %s\t%s\n", s.Label, s.Value)
	}
	tw.Flush()

	if e.Evolution != nil {
		for _, ref := range e.Evolution.Precedents {
			fmt.Fprintf(w, "Evolves from: %s\n", refLabel(ref))
		}
		for _, ref := range e.Evolution.Successors {
			fmt.Fprintf(w, "Evolves into: %s\n", refLabel(ref))
		}
	}
	for _, f := range e.Forms {
		fmt.Fprintf(w, "Form: %s\n", f.Name)
	}

	nav := "next #" + strconv.Itoa(d.Navigation.NextID)
	if d.Navigation.PrevID != nil {
		nav = "prev #" + strconv.Itoa(*d.Navigation.PrevID) + ", " + nav
	}
	fmt.Fprintln(w, nav)
}

func refLabel(ref domain.EvolutionRef) string {
	if ref.Condition == "" {
		return ref.Name
	}
	return ref.Name + " (" + ref.Condition + ")"
}
