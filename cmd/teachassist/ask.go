package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bububa/teachassist/handlers"
)

func newAskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question through one of the entry points",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	cmd.Flags().String("entry", "teacher", "entry point: teacher, math or weather")
	cmd.Flags().String("city", "", "city for the weather entry point")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	entry, _ := cmd.Flags().GetString("entry")
	city, _ := cmd.Flags().GetString("city")
	question := strings.Join(args, " ")
	a, err := loadApp(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		fn    handlers.HandlerFunc
		event any
		field string
	)
	switch entry {
	case "teacher":
		fn, field = a.Handlers.Teacher, "agentResponse"
		event = handlers.TeacherRequest{UserQuestion: question}
	case "math":
		fn, field = a.Handlers.Math, "response"
		event = handlers.MathRequest{Query: question}
	case "weather":
		fn, field = a.Handlers.Weather, "response"
		event = handlers.WeatherRequest{Query: question, City: city}
	default:
		return fmt.Errorf("unknown entry %q, want teacher, math or weather", entry)
	}
	bs, err := json.Marshal(event)
	if err != nil {
		return err
	}
	resp, err := fn(cmd.Context(), bs)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s entry failed with status %d: %s", entry, resp.StatusCode, resp.Body)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), body[field])
	return nil
}
