package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spec-kit/lostfound-service/pkg/client"
)

var stdout io.Writer = os.Stdout

func cmdPing(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("ping", flag.ExitOnError)
	fs.Parse(args)

	if err := e.client.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "API reachable.")
	return nil
}

func cmdLogin(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("LOSTFOUND_PASSWORD"), "account password (prompted if empty)")
	fs.Parse(args)

	if *email == "" {
		value, err := prompt("Email: ")
		if err != nil {
			return err
		}
		*email = value
	}
	if *password == "" {
		value, err := prompt("Password: ")
		if err != nil {
			return err
		}
		*password = value
	}

	user, err := e.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Signed in as %s (%s).\n", user.Name, user.Role)
	return nil
}

func cmdLogout(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	fs.Parse(args)

	if e.auth.State() != client.StateAuthenticated {
		fmt.Fprintln(stdout, "Not signed in.")
		return nil
	}
	if err := e.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Signed out.")
	return nil
}

func cmdWhoami(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	fs.Parse(args)

	if _, ok := e.auth.RequireRole(""); !ok {
		return errNotSignedIn
	}
	user, err := e.client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s <%s>\nrole: %s\nstatus: %s\n", user.Name, user.Email, user.Role, user.Status)
	return nil
}

var errNotSignedIn = errors.New("not signed in; run `lostfound login`")

func cmdItems(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("items", flag.ExitOnError)
	q := fs.String("q", "", "keyword")
	types := fs.String("type", "", "Lost or Found (comma separated)")
	statuses := fs.String("status", "", "statuses (comma separated)")
	categories := fs.String("category", "", "categories (comma separated)")
	locations := fs.String("location", "", "locations (comma separated)")
	mine := fs.Bool("mine", false, "only items I reported")
	page := fs.Int("page", 1, "page number")
	pageSize := fs.Int("page-size", 20, "items per page")
	fs.Parse(args)

	query := client.ItemQuery{
		Keyword:    *q,
		Types:      splitList(*types),
		Statuses:   splitList(*statuses),
		Categories: splitList(*categories),
		Locations:  splitList(*locations),
		Page:       *page,
		PageSize:   *pageSize,
	}
	if *mine {
		user := e.auth.User()
		if user == nil {
			return errNotSignedIn
		}
		query.ReportedBy = user.ID
	}

	result, err := e.client.ListItems(ctx, query)
	if err != nil {
		return err
	}
	printItems(result.Items)
	fmt.Fprintf(stdout, "\npage %d, %d of %d items\n", result.Page, len(result.Items), result.Total)
	return nil
}

func cmdSearch(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	fs.Parse(args)

	keyword := strings.Join(fs.Args(), " ")
	if keyword == "" {
		return errors.New("usage: lostfound search <keyword>")
	}
	items, err := e.client.SearchItems(ctx, keyword)
	if err != nil {
		return err
	}
	printItems(items)
	return nil
}

func cmdReport(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	kind := fs.String("type", "Lost", "Lost or Found")
	description := fs.String("description", "", "what the item looks like")
	location := fs.String("location", "", "where it was lost or found")
	category := fs.String("category", "", "item category")
	date := fs.String("date", "", "date reported (YYYY-MM-DD, default today)")
	image := fs.String("image", "", "path to a JPEG, PNG or WebP photo")
	fs.Parse(args)

	if _, ok := e.auth.RequireRole(""); !ok {
		return errNotSignedIn
	}

	input := client.ItemInput{
		Description: *description,
		Location:    *location,
		Type:        *kind,
		Category:    *category,
	}
	if *date != "" {
		parsed, err := time.Parse("2006-01-02", *date)
		if err != nil {
			return fmt.Errorf("invalid -date: %w", err)
		}
		input.ReportedDate = &parsed
	}
	if *image != "" {
		url, err := uploadImage(ctx, e.client, *image)
		if err != nil {
			return err
		}
		input.ImageURL = url
	}

	report, err := e.client.ReportItem(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Reported item #%d (%s).\n", report.Item.ID, report.Item.Status)
	if len(report.Matches) > 0 {
		fmt.Fprintf(stdout, "\n%d potential match(es):\n", len(report.Matches))
		printItems(report.Matches)
	}
	return nil
}

func uploadImage(ctx context.Context, c *client.Client, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read image: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	contentType := detectImageType(head[:n])
	return c.UploadImage(ctx, path, contentType, f)
}

func detectImageType(head []byte) string {
	switch {
	case len(head) >= 3 && head[0] == 0xFF && head[1] == 0xD8 && head[2] == 0xFF:
		return "image/jpeg"
	case len(head) >= 8 && string(head[:8]) == "\x89PNG\r\n\x1a\n":
		return "image/png"
	case len(head) >= 12 && string(head[:4]) == "RIFF" && string(head[8:12]) == "WEBP":
		return "image/webp"
	}
	return "application/octet-stream"
}

func cmdClaim(ctx context.Context, e *env, args []string) error {
	id, err := itemArg("claim", args)
	if err != nil {
		return err
	}
	item, err := e.client.ClaimItem(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Item #%d is now %s.\n", item.ID, item.Status)
	return nil
}

func cmdMatches(ctx context.Context, e *env, args []string) error {
	id, err := itemArg("matches", args)
	if err != nil {
		return err
	}
	items, err := e.client.Matches(ctx, id)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(stdout, "No potential matches.")
		return nil
	}
	printItems(items)
	return nil
}

func itemArg(name string, args []string) (int64, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return 0, fmt.Errorf("usage: lostfound %s <item-id>", name)
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", fs.Arg(0))
	}
	return id, nil
}

func cmdStats(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Parse(args)

	s, err := e.client.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "total %d  lost %d  found %d  claimed %d  pending %d  returned %d\n",
		s.Items.Total, s.Items.Lost, s.Items.Found, s.Items.Claimed, s.Items.Pending, s.Items.Returned)
	fmt.Fprintf(stdout, "today %d  this week %d  this month %d\n", s.ByTime.Today, s.ByTime.ThisWeek, s.ByTime.ThisMonth)
	printCounts("By category", s.ByCategory)
	printCounts("By location", s.ByLocation)
	return nil
}

func cmdNotifications(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	readAll := fs.Bool("read-all", false, "mark every notification as read")
	fs.Parse(args)

	if _, ok := e.auth.RequireRole(""); !ok {
		return errNotSignedIn
	}
	center := client.NewNotificationCenter(e.client)
	if err := center.Refresh(ctx); err != nil {
		return err
	}
	if *readAll {
		if err := center.MarkAllRead(ctx); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, n := range center.Notifications() {
		marker := "*"
		if n.Read {
			marker = " "
		}
		fmt.Fprintf(w, "%s\t#%d\t%s\t%s\t%s\n", marker, n.ID, n.Type, n.CreatedAt.Format("2006-01-02 15:04"), n.Message)
	}
	w.Flush()
	fmt.Fprintf(stdout, "%d unread\n", center.UnreadCount())
	return nil
}

func printItems(items []client.Item) {
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tCATEGORY\tLOCATION\tDATE\tDESCRIPTION")
	for _, item := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Type, item.Status, item.Category, item.Location,
			item.ReportedDate.Format("2006-01-02"), truncate(item.Description, 48))
	}
	w.Flush()
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	fmt.Fprintf(stdout, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(stdout, "  %-24s %d\n", k, counts[k])
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
