package discordbot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/haojie06/dallebot/internal/ledger"
	"github.com/olekukonko/tablewriter"
)

// FormatStats renders the snapshot as a code block with a boxed table.
func FormatStats(snapshot ledger.Snapshot, now time.Time) string {
	var b strings.Builder
	b.WriteString("```")
	fmt.Fprintf(&b, "As of %s, total runs: %d, total spent: $%.2f\n", now.Format("Jan 02, 2006"), snapshot.Runs, snapshot.Spent)
	b.WriteString("\nStats breakdown\n")

	table := tablewriter.NewWriter(&b)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"User", "# Runs", "Spent"})
	table.SetRowLine(true)
	for _, author := range snapshot.Authors {
		table.Append([]string{author.Author, strconv.Itoa(author.Runs), fmt.Sprintf("$%.2f", author.Spent)})
	}
	table.Render()

	b.WriteString("```")
	return b.String()
}
