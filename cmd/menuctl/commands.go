package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"menu-planner/internal/client"
	"menu-planner/internal/core/menu"
	"menu-planner/internal/core/recipe"
	"menu-planner/internal/pkg/common"
)

func newRootCmd(out io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MENU")
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "menuctl",
		Short:         "Plan the week's meals and manage the shopping list",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("server", "http://localhost:8080", "API base URL (env MENU_SERVER)")
	root.PersistentFlags().String("token", "", "Bearer token (env MENU_TOKEN)")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "Request timeout")
	root.PersistentFlags().Bool("json", false, "Print the raw JSON response")
	_ = v.BindPFlag("server", root.PersistentFlags().Lookup("server"))
	_ = v.BindPFlag("token", root.PersistentFlags().Lookup("token"))
	_ = v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))
	_ = v.BindPFlag("json", root.PersistentFlags().Lookup("json"))

	app := &cli{v: v, out: out}
	root.AddCommand(
		app.loginCmd(),
		app.generateCmd(),
		app.showCmd(),
		app.shoppingCmd(),
		app.servingsCmd(),
		app.regenerateCmd(),
		app.assignCmd(),
		app.mealCmd(),
		app.recipesCmd(),
	)
	return root
}

type cli struct {
	v   *viper.Viper
	out io.Writer
}

func (a *cli) client() *client.Client {
	return client.New(client.Options{
		BaseURL: a.v.GetString("server"),
		Token:   a.v.GetString("token"),
		Timeout: a.v.GetDuration("timeout"),
	})
}

func (a *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <code>",
		Short: "Exchange the access code for a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.client().Login(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "export MENU_TOKEN=%s\n", token)
			return nil
		},
	}
}

func (a *cli) generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Plan a new week",
		RunE: func(cmd *cobra.Command, args []string) error {
			people, _ := cmd.Flags().GetInt("people")
			st, err := a.client().Generate(cmd.Context(), people)
			return a.printState(st, err)
		},
	}
	cmd.Flags().IntP("people", "p", 2, "People to cook for")
	return cmd
}

func (a *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current plan and shopping list",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.client().Last(cmd.Context())
			if err != nil {
				return err
			}
			if st == nil {
				fmt.Fprintln(a.out, "No menu yet. Run `menuctl generate`.")
				return nil
			}
			return a.printState(st, nil)
		},
	}
}

func (a *cli) shoppingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopping",
		Short: "Edit the shopping list",
	}

	toggle := &cobra.Command{
		Use:   "toggle <item>",
		Short: "Check or uncheck an item (use --extra with an extra id)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, _ := cmd.Flags().GetBool("extra")
			if extra {
				return a.printState(a.client().ToggleExtra(cmd.Context(), args[0]))
			}
			return a.printState(a.client().ToggleItem(cmd.Context(), args[0]))
		},
	}
	toggle.Flags().Bool("extra", false, "Toggle a manual extra by id")

	qty := &cobra.Command{
		Use:   "qty <item> [quantity]",
		Short: "Override an item's quantity; omit the quantity to reset it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := ""
			if len(args) == 2 {
				q = args[1]
			}
			return a.printState(a.client().SetQuantity(cmd.Context(), args[0], q))
		},
	}

	add := &cobra.Command{
		Use:   "add <name> [quantity]",
		Short: "Add a manual item",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := ""
			if len(args) == 2 {
				q = args[1]
			}
			return a.printState(a.client().AddExtra(cmd.Context(), args[0], q))
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a manual item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printState(a.client().RemoveExtra(cmd.Context(), args[0]))
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every manual item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printState(a.client().ClearExtras(cmd.Context()))
		},
	}

	cmd.AddCommand(toggle, qty, add, rm, clearCmd)
	return cmd
}

func (a *cli) servingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servings <n>",
		Short: "Set servings for a slot, an extra meal or the dessert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid servings %q", args[0])
			}
			target, err := targetFromFlags(cmd)
			if err != nil {
				return err
			}
			return a.printState(a.client().SetServings(cmd.Context(), target, n))
		},
	}
	addTargetFlags(cmd)
	return cmd
}

func (a *cli) regenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Draw a new meal for a slot, or a new dessert",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := targetFromFlags(cmd)
			if err != nil {
				return err
			}
			return a.printState(a.client().Regenerate(cmd.Context(), target))
		},
	}
	addTargetFlags(cmd)
	return cmd
}

func (a *cli) assignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <recipe-id> [paired-id]",
		Short: "Pin a recipe, optionally paired, to a target",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			target, err := targetFromFlags(cmd)
			if err != nil {
				return err
			}
			return a.printState(a.client().Assign(cmd.Context(), target, ids[0], ids[1]))
		},
	}
	addTargetFlags(cmd)
	return cmd
}

func (a *cli) mealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meal",
		Short: "Manage extra meals outside the calendar",
	}
	add := &cobra.Command{
		Use:   "add <recipe-id> [paired-id]",
		Short: "Add an extra meal",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return a.printState(a.client().AddMeal(cmd.Context(), ids[0], ids[1]))
		},
	}
	rm := &cobra.Command{
		Use:   "rm <unique-id>",
		Short: "Remove an extra meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printState(a.client().RemoveMeal(cmd.Context(), args[0]))
		},
	}
	cmd.AddCommand(add, rm)
	return cmd
}

func (a *cli) recipesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Browse and back up the recipe catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client().ListRecipes(cmd.Context())
			if err != nil {
				return err
			}
			if a.v.GetBool("json") {
				return a.printJSON(list)
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tSERVINGS\tDIFFICULTY")
			for _, r := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n", r.ID, r.Name, r.Type, r.Servings, r.Difficulty)
			}
			return w.Flush()
		},
	}

	export := &cobra.Command{
		Use:   "export [id...]",
		Short: "Write recipes as JSON to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, s := range args {
				id, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid recipe id %q", s)
				}
				ids = append(ids, id)
			}
			list, err := a.client().Export(cmd.Context(), ids)
			if err != nil {
				return err
			}
			return a.printJSON(list)
		},
	}

	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Load recipes from a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			var list []recipe.Recipe
			if err := common.DecodeJSON(f, &list); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			wipe, _ := cmd.Flags().GetBool("clear")
			n, err := a.client().Import(cmd.Context(), list, wipe)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "imported %d recipes\n", n)
			return nil
		},
	}
	imp.Flags().Bool("clear", false, "Delete the current catalog first")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid recipe id %q", args[0])
			}
			return a.client().DeleteRecipe(cmd.Context(), id)
		},
	}

	cmd.AddCommand(export, imp, rm)
	return cmd
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().Int("day", 0, "Day of the week, 1-7")
	cmd.Flags().String("slot", "", "lunch or dinner")
	cmd.Flags().String("extra", "", "Extra meal unique id")
	cmd.Flags().Bool("dessert", false, "Target the dessert")
}

func targetFromFlags(cmd *cobra.Command) (menu.Target, error) {
	day, _ := cmd.Flags().GetInt("day")
	slot, _ := cmd.Flags().GetString("slot")
	extra, _ := cmd.Flags().GetString("extra")
	dessert, _ := cmd.Flags().GetBool("dessert")

	switch {
	case dessert:
		return menu.DessertTarget(), nil
	case extra != "":
		return menu.ExtraTarget(extra), nil
	case day != 0:
		s, err := menu.ParseSlot(slot)
		if err != nil {
			return menu.Target{}, err
		}
		return menu.SlotTarget(day, s), nil
	}
	return menu.Target{}, fmt.Errorf("one of --day/--slot, --extra or --dessert is required")
}

func parseIDs(args []string) ([2]int64, error) {
	var ids [2]int64
	for i, s := range args {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return ids, fmt.Errorf("invalid recipe id %q", s)
		}
		ids[i] = id
	}
	return ids, nil
}

func (a *cli) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *cli) printState(st *menu.State, err error) error {
	if err != nil {
		return err
	}
	if a.v.GetBool("json") {
		return a.printJSON(st)
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Menu for %d\n\n", st.People)
	fmt.Fprintln(w, "DAY\tLUNCH\tDINNER")
	for _, d := range st.Menu {
		fmt.Fprintf(w, "%d\t%s\t%s\n", d.Day, mealLabel(d.Lunch), mealLabel(d.Dinner))
	}
	for _, e := range st.ExtraMeals {
		fmt.Fprintf(w, "extra\t%s\t%s\n", mealLabel(&e.Meal), e.UniqueID)
	}
	if st.Dessert != nil {
		fmt.Fprintf(w, "dessert\t%s (x%d)\t\n", st.Dessert.Name(), st.EffectiveDessertPeople())
	}

	fmt.Fprintln(w, "\nITEM\tQTY\t")
	names := make([]string, 0, len(st.ShoppingList.Main))
	for name := range st.ShoppingList.Main {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		item := st.ShoppingList.Main[name]
		fmt.Fprintf(w, "%s %s\t%s\t%s\n", checkbox(item.Checked), name, item.Qty, marker(item.IsModified))
	}
	for _, e := range st.ShoppingExtras {
		fmt.Fprintf(w, "%s %s\t%s\t%s\n", checkbox(e.Checked), e.Name, e.Qty, e.ID)
	}
	return w.Flush()
}

func mealLabel(m *menu.Meal) string {
	if m == nil {
		return "-"
	}
	if m.CustomServings != nil {
		return fmt.Sprintf("%s (x%d)", m.Name(), *m.CustomServings)
	}
	return m.Name()
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func marker(modified bool) string {
	if modified {
		return "edited"
	}
	return ""
}
