package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrcoldpotato/talentflow-v2/internal/client"
	"github.com/mrcoldpotato/talentflow-v2/internal/tui"
)

func main() {
	api := flag.String("api", "http://localhost:5050", "base URL of the TalentFlow API")
	flag.Parse()

	c := client.New(*api, &http.Client{Timeout: 15 * time.Second})
	model := tui.NewModel(client.NewCoordinator(c), c)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "board: %v\n", err)
		os.Exit(1)
	}
}
