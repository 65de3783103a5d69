package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/storycurator/curator/internal/domain"
	"github.com/storycurator/curator/internal/infrastructure/config"
	"github.com/storycurator/curator/internal/infrastructure/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create curator.yaml and the dataset skeleton",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		configPath := filepath.Join(rootDir, config.ConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists", configPath)
		}
		if err := config.Save(rootDir, cfg); err != nil {
			return err
		}

		datasetDir := resolveDir(cfg.DatasetDir)
		rubricDir := filepath.Join(datasetDir, storage.RubricDir)
		if err := os.MkdirAll(rubricDir, 0700); err != nil {
			return err
		}

		files := map[string]string{
			filepath.Join(datasetDir, storage.StoriesFile): "story_id,story_title,grade_level,story_content\n",
			filepath.Join(datasetDir, storage.SkillsFile):  "skill_id,skill_name,skill_category,skill_description\n",
		}
		for _, cat := range domain.AllCategories {
			path := filepath.Join(rubricDir, string(cat)+".md")
			files[path] = fmt.Sprintf("# %s\n\nDescribe what to flag for this dimension.\n", cat.DisplayName())
		}
		for path, content := range files {
			if _, err := os.Stat(path); err == nil {
				continue
			}
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				return err
			}
		}

		fmt.Printf("Initialized curator project in %s\n", rootDir)
		fmt.Printf("Fill in %s and the rubric files, then run \"curator review\".\n",
			filepath.Join(cfg.DatasetDir, storage.StoriesFile))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
