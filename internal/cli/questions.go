package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"leadgen-service/internal/app"
)

// NewQuestionsCmd prints the built-in assessment question bank as YAML.
func NewQuestionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "Print the digital readiness question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			questions := app.DefaultQuestions()
			if err := app.ValidateQuestions(questions); err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(questions)
		},
	}
}
