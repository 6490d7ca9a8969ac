package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meridianlab/paperlens/internal/resolve"
	"github.com/meridianlab/paperlens/internal/session"
	"github.com/meridianlab/paperlens/internal/similarity"
)

func init() {
	exploreCmd.RunE = runExplore
	rootCmd.AddCommand(exploreCmd)
}

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Interactive search and suggestion session",
	Long: `Start an interactive session. Type a query to search; the session
keeps per-query state (relaxed cutoff, expanded suggestions) and resets
it whenever the query text changes.

Commands:
  <query>      run a search
  :more        relax the similarity cutoff for the current query
  :sim <n>     toggle similar-paper suggestions for result n
  :fields t|a|ta
               search titles, abstracts, or both
  :quit        leave the session`,
	Args: cobra.NoArgs,
}

func runExplore(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	eng := mustOpenEngine(ctx)
	defer eng.Close()

	sess := session.New(eng.svc)
	var page []resolve.Record

	fmt.Println("paperlens interactive session. Type a query, or :help for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, ":") {
			sess.SetQuery(line)
			page = showResults(ctx, sess)
			continue
		}

		parts := strings.Fields(line)
		switch parts[0] {
		case ":quit", ":q", ":exit":
			return nil

		case ":help":
			fmt.Println(exploreCmd.Long)

		case ":more":
			if sess.Query() == "" {
				fmt.Println("No active query.")
				continue
			}
			sess.ShowMore()
			page = showResults(ctx, sess)

		case ":fields":
			if len(parts) < 2 {
				fmt.Println("Usage: :fields t|a|ta")
				continue
			}
			fields := similarity.Fields{
				Title:    strings.Contains(parts[1], "t"),
				Abstract: strings.Contains(parts[1], "a"),
			}
			if !fields.Enabled() {
				fmt.Println("At least one of title/abstract must stay enabled.")
				continue
			}
			sess.SetFields(fields)
			if sess.Query() != "" {
				page = showResults(ctx, sess)
			}

		case ":sim":
			if len(parts) < 2 {
				fmt.Println("Usage: :sim <result number>")
				continue
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil || n < 1 || n > len(page) {
				fmt.Printf("Pick a result between 1 and %d.\n", len(page))
				continue
			}
			toggleSimilar(sess, page[n-1])

		default:
			fmt.Printf("Unknown command %s (:help for commands)\n", parts[0])
		}
	}

	return scanner.Err()
}

// showResults runs the session's active query and prints the page.
func showResults(ctx context.Context, sess *session.Session) []resolve.Record {
	result, err := sess.Results(ctx)
	if err != nil {
		fmt.Printf("search failed: %v\n", err)
		return nil
	}

	if len(result.Records) == 0 {
		if sess.Relaxed() {
			fmt.Println("No match found.")
		} else {
			fmt.Println("No match found with enough similarity. Try :more.")
		}
		return nil
	}

	fmt.Printf("Results (%s cutoff):\n\n", result.Tier)
	printResultsHuman(result.Records)
	if result.CanRelax {
		fmt.Println("Type :more to show less similar matches.")
	}
	return result.Records
}

// toggleSimilar expands or collapses the suggestions under one result.
func toggleSimilar(sess *session.Session, paper resolve.Record) {
	records, expanded, err := sess.ToggleSimilar(paper.ID)
	if err != nil {
		fmt.Printf("no suggestions for %s: %v\n", paper.ID, err)
		return
	}

	if !expanded {
		fmt.Printf("Hidden suggestions for %s.\n", paper.ID)
		return
	}

	fmt.Printf("Similar to %q:\n\n", truncateString(paper.Title, ResultTitleMaxLen))
	printResultsHuman(records)
}
