package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/xcview/internal/bucket"
	"github.com/mmcdole/xcview/internal/config"
	"github.com/mmcdole/xcview/internal/domain"
	"github.com/mmcdole/xcview/internal/search"
	"github.com/mmcdole/xcview/internal/stream"
	"github.com/sahilm/fuzzy"
	"golang.org/x/term"
)

var errUsage = errors.New("invalid usage")

type command struct {
	needsAccount bool
	run          func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"profiles":   {false, runProfiles},
	"profile":    {false, runProfile},
	"categories": {true, runCategories},
	"items":      {true, runItems},
	"info":       {true, runInfo},
	"search":     {true, runSearch},
	"url":        {true, runURL},
	"bucket":     {true, runBucket},
	"hide":       {true, runHide},
	"show":       {true, runShow},
}

// parseFlags parses a subcommand's flags and checks the positional count
func parseFlags(fs *flag.FlagSet, args []string, minArgs int) ([]string, error) {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < minArgs {
		return nil, fmt.Errorf("%w: %s expects %d argument(s)", errUsage, fs.Name(), minArgs)
	}
	return fs.Args(), nil
}

// === Profiles ===

func runProfiles(ctx context.Context, a *app, args []string) error {
	current := a.profile()
	for _, name := range a.profiles.Known() {
		marker := "  "
		if name == current {
			marker = render(AccentStyle, "> ")
		}
		p, _ := a.cfg.Profile(name)
		fmt.Fprintf(a.out, "%s%s %s\n", marker, render(TitleStyle, name), render(DimStyle, p.URL))
	}
	return nil
}

func runProfile(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: profile expects switch or add", errUsage)
	}
	switch args[0] {
	case "switch":
		if len(args) != 2 {
			return fmt.Errorf("%w: profile switch <name>", errUsage)
		}
		if err := a.profiles.Switch(args[1]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, render(SuccessStyle, "✓ Active profile: "+args[1]))
		return nil
	case "add":
		if len(args) != 4 {
			return fmt.Errorf("%w: profile add <name> <url> <username>", errUsage)
		}
		return addProfile(ctx, a, args[1], args[2], args[3])
	default:
		return fmt.Errorf("%w: unknown profile action %q", errUsage, args[0])
	}
}

// addProfile prompts for the password, verifies the account and saves it
func addProfile(ctx context.Context, a *app, name, url, username string) error {
	password, err := readPassword()
	if err != nil {
		return err
	}

	p := config.ProfileConfig{Name: name, URL: strings.TrimRight(url, "/"), Username: username, Password: password}
	a.directory.SetAccount(name, accountFor(p, time.Duration(a.cfg.Store.TimeoutSec)*time.Second))

	client, err := a.directory.Client(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Authenticating...")
	info, err := client.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	a.cfg.UpsertProfile(p)
	if a.cfg.DefaultProfile == "" {
		a.cfg.DefaultProfile = name
	}
	if a.opts.configPath != "" {
		err = config.SaveConfigTo(a.cfg, a.opts.configPath)
	} else {
		err = config.SaveConfig(a.cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(a.out, render(SuccessStyle, fmt.Sprintf("✓ Profile %s saved (%s, max connections %s)", name, info.Status, info.MaxConnections)))
	return nil
}

// readPassword reads hidden input on a terminal and a plain line otherwise
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Print("Password: ")
		passwordBytes, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(passwordBytes), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// === Catalog ===

func runCategories(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	showAll := fs.Bool("all", false, "include hidden categories")
	filter := fs.String("filter", "", "fuzzy filter on category names")
	rest, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}
	t, err := domain.ParseMediaType(rest[0])
	if err != nil {
		return err
	}

	profile := a.profile()
	categories := a.catalog.RetrieveCategories(ctx, t)
	if !*showAll {
		categories = a.visibility.Visible(profile, t, categories)
	}
	if *filter != "" {
		categories = filterCategories(categories, *filter)
	}

	hidden := a.visibility.Hidden(profile, t)
	for _, c := range categories {
		line := fmt.Sprintf("%-8s %s %s", c.ID, c.Flag(), c.Label())
		if slices.Contains(hidden, c.ID) {
			line = render(DimStyle, line+" (hidden)")
		}
		fmt.Fprintln(a.out, line)
	}
	if len(categories) == 0 {
		fmt.Fprintln(a.out, render(DimStyle, "no categories"))
	}
	return nil
}

// filterCategories keeps the categories whose names fuzzily match query, best first
func filterCategories(categories []domain.Category, query string) []domain.Category {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = strings.ToLower(c.Name)
	}
	matches := fuzzy.Find(strings.ToLower(query), names)

	filtered := make([]domain.Category, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, categories[m.Index])
	}
	return filtered
}

func runItems(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("items", flag.ContinueOnError)
	categoryID := fs.String("category", "", "only list items of this category")
	rest, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}
	t, err := domain.ParseMediaType(rest[0])
	if err != nil {
		return err
	}

	items := a.catalog.RetrieveCategoryInfo(ctx, t)
	keys := a.bucket.Keys(a.profile())
	count := 0
	for _, item := range items {
		if *categoryID != "" && item.CategoryID != *categoryID {
			continue
		}
		printItem(a, item, keys)
		count++
	}
	if count == 0 {
		fmt.Fprintln(a.out, render(DimStyle, "no items"))
	}
	return nil
}

func printItem(a *app, item domain.MediaItem, bucketKeys []string) {
	marker := NoBucketChar
	if slices.Contains(bucketKeys, item.Key()) {
		marker = render(AccentStyle, BucketChar)
	}
	flagToken, label := domain.SplitItemName(item.Name)
	fmt.Fprintf(a.out, "%s %-16s %s %s\n", marker, render(DimStyle, item.Key()), flagToken, label)
}

func runInfo(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: info <type> <id>", errUsage)
	}
	t, err := domain.ParseMediaType(args[0])
	if err != nil {
		return err
	}

	info, ok := a.resolver.Resolve(ctx, t, args[1], nil)
	if !ok {
		fmt.Fprintln(a.out, render(DimStyle, "no details available"))
		return nil
	}

	var b strings.Builder
	title := info.Name
	if year := info.ReleaseYear(); year != "" {
		title += " (" + year + ")"
	}
	b.WriteString(render(TitleStyle, title) + "\n")
	for _, field := range []struct{ label, value string }{
		{"Genre", info.Genre},
		{"Rating", info.Rating},
		{"Duration", info.Duration},
		{"Director", info.Director},
		{"Cast", info.Cast},
	} {
		if field.value != "" {
			b.WriteString(render(SubtitleStyle, field.label+": ") + field.value + "\n")
		}
	}
	if info.Plot != "" {
		b.WriteString("\n" + info.Plot + "\n")
	}
	if link := stream.TMDbURL(t, info.TMDBID); link != "" {
		b.WriteString("\n" + render(LinkStyle, link) + "\n")
	}
	for _, season := range info.Seasons {
		b.WriteString("\n" + render(AccentStyle, "Season "+strconv.Itoa(season)) + "\n")
		for _, ep := range info.EpisodesInSeason(season) {
			b.WriteString(fmt.Sprintf("  %s  %s %s\n", ep.Code(), ep.Title, render(DimStyle, "["+ep.ID+"."+ep.Extension+"]")))
		}
	}

	out := strings.TrimRight(b.String(), "\n")
	if styled {
		out = DetailStyle.Render(out)
	}
	fmt.Fprintln(a.out, out)
	return nil
}

// === Search ===

func runSearch(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	more := fs.Int("more", 0, "reveal this many additional chunks")
	rest, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}
	query := strings.Join(rest, " ")

	pager := a.search.Load(ctx)
	pager.SetQuery(query)
	for range *more {
		pager.LoadMore()
	}

	if pager.Total() == 0 {
		fmt.Fprintln(a.out, render(DimStyle, "no matches for "+strconv.Quote(query)))
		suggestions := search.Suggest(a.search.Collections(ctx), query, a.cfg.Search.Suggestions)
		if len(suggestions) > 0 {
			fmt.Fprintln(a.out, render(SubtitleStyle, "Did you mean:"))
		}
		for _, item := range suggestions {
			printItem(a, item, nil)
		}
		return nil
	}

	keys := a.bucket.Keys(a.profile())
	var lastType domain.MediaType
	for _, item := range pager.Visible() {
		if item.Type != lastType {
			fmt.Fprintln(a.out, render(HeaderStyle, strings.ToUpper(item.Type.String())))
			lastType = item.Type
		}
		printItem(a, item, keys)
	}
	fmt.Fprintln(a.out, render(DimStyle, fmt.Sprintf("showing %d of %d", pager.Revealed(), pager.Total())))
	return nil
}

// === Playback ===

func runURL(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: url <type> <id> [extension]", errUsage)
	}
	t, err := domain.ParseMediaType(args[0])
	if err != nil {
		return err
	}
	id := args[1]

	ext := ""
	if len(args) == 3 {
		ext = args[2]
	}
	name := id
	if t == domain.MediaTypeMovie && ext == "" {
		for _, item := range a.catalog.RetrieveCategoryInfo(ctx, t) {
			if item.ID == id {
				ext, name = item.Extension, item.Name
				break
			}
		}
	}

	b, err := a.builder()
	if err != nil {
		return err
	}
	url, err := b.Build(t, id, ext)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, render(TitleStyle, stream.PlayerTitle(name)))
	fmt.Fprintln(a.out, url)
	return nil
}

// === Bucket list ===

func runBucket(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: bucket expects list or toggle", errUsage)
	}
	profile := a.profile()

	switch args[0] {
	case "list":
		keys := a.bucket.Keys(profile)
		if len(keys) == 0 {
			fmt.Fprintln(a.out, render(DimStyle, "bucket list is empty"))
			return nil
		}
		var listings [][]domain.MediaItem
		for _, t := range domain.MediaTypes {
			listings = append(listings, a.catalog.RetrieveCategoryInfo(ctx, t))
		}
		for _, item := range bucket.Resolve(keys, listings...) {
			printItem(a, item, keys)
		}
		return nil

	case "toggle":
		if len(args) != 3 {
			return fmt.Errorf("%w: bucket toggle <type> <id>", errUsage)
		}
		t, err := domain.ParseMediaType(args[1])
		if err != nil {
			return err
		}
		added, err := a.bucket.Toggle(profile, t, args[2])
		if err != nil {
			return err
		}
		if added {
			fmt.Fprintln(a.out, render(SuccessStyle, "✓ Added "+domain.BucketKey(t, args[2])))
		} else {
			fmt.Fprintln(a.out, render(SuccessStyle, "✓ Removed "+domain.BucketKey(t, args[2])))
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown bucket action %q", errUsage, args[0])
	}
}

// === Category visibility ===

func runHide(ctx context.Context, a *app, args []string) error {
	return editVisibility(a, args, true)
}

func runShow(ctx context.Context, a *app, args []string) error {
	return editVisibility(a, args, false)
}

// editVisibility applies every change in one edit session. Any failure
// discards the session so nothing is partially committed.
func editVisibility(a *app, args []string, hide bool) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: <type> <category-id>...", errUsage)
	}
	t, err := domain.ParseMediaType(args[0])
	if err != nil {
		return err
	}
	profile := a.profile()

	a.visibility.Enter(profile, t)
	for _, id := range args[1:] {
		if hide {
			err = a.visibility.Hide(profile, t, id)
		} else {
			err = a.visibility.Show(profile, t, id)
		}
		if err != nil {
			a.visibility.Discard(profile, t)
			return err
		}
	}
	if err := a.visibility.CommitAndExit(profile, t); err != nil {
		a.visibility.Discard(profile, t)
		return err
	}

	fmt.Fprintln(a.out, render(SuccessStyle, fmt.Sprintf("✓ %d hidden %s categories", len(a.visibility.Hidden(profile, t)), t)))
	return nil
}
