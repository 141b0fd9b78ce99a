package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tbielander/xtract/internal/catalog"
	"github.com/tbielander/xtract/internal/history"
	"github.com/tbielander/xtract/internal/notify"
	"github.com/tbielander/xtract/internal/precheck"
	"github.com/tbielander/xtract/internal/rewrite"
	"github.com/tbielander/xtract/internal/rewriteconfig"
	"github.com/tbielander/xtract/internal/upload"
)

// pipelineDeps bundles the loaded configuration and catalog used across the
// pipeline's steps, and the message-keyed loggers built from them.
type pipelineDeps struct {
	cfg  *rewriteconfig.Config
	cat  rewrite.Catalog
	msg  func(key string) string
	warn rewrite.WarnFunc
}

func loadDeps() (*pipelineDeps, error) {
	configPath, err := requireEnv("CONFIG")
	if err != nil {
		return nil, err
	}
	msgConfigPath, err := requireEnv("MSG_CONFIG")
	if err != nil {
		return nil, err
	}

	cfg, err := rewriteconfig.Load(configPath)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(msgConfigPath)
	if err != nil {
		return nil, err
	}

	lang := cfg.Settings.Lang
	msg := func(key string) string { return rewrite.GetMsg(cat, key, lang) }
	warn := func(code, detail string) {
		logrus.WithField("detail", detail).Warn(msg(code))
	}

	return &pipelineDeps{cfg: cfg, cat: cat, msg: msg, warn: warn}, nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	deps, err := loadDeps()
	if err != nil {
		return err
	}
	cfg := deps.cfg

	now := time.Now()
	timestamp := now.Format(cfg.Settings.Timeformats.HistoryFolder)

	if err := history.Prune(cfg.Settings.Dirs.History, cfg.Settings.HistorySize, cfg.Settings.Timeformats.HistoryFolder, now, deps.warn); err != nil {
		logrus.WithError(err).Error(deps.msg("reading_hist_dir_failed"))
	}

	if cfg.Settings.ConsistencyCheck {
		runConsistencyCheck(deps)
	}

	originalFile, err := findOriginal(cfg.Settings.Dirs.Original)
	if err != nil {
		notify.Send(cfg, fmt.Sprintf("%s: %v", deps.msg("reading_original_failed"), err))
		return fmt.Errorf("%s: %w. %s", deps.msg("reading_original_failed"), err, deps.msg("process_cancelled"))
	}

	pathToOriginal := filepath.Join(cfg.Settings.Dirs.Original, originalFile)

	if dryRun {
		logrus.WithField("file", pathToOriginal).Info("dry run: would transform, write, upload, and archive this file")
		return nil
	}

	currentHistory, err := history.CurrentRunDir(cfg.Settings.Dirs.History, cfg.Settings.Timeformats.HistoryFolder, now)
	if err != nil {
		return err
	}
	logrus.WithField("timestamp", timestamp).Info(deps.msg("history_creation_successful"))

	f, err := os.Open(pathToOriginal)
	if err != nil {
		msgText := fmt.Sprintf("%s: %s - %v", deps.msg("transformation_failed"), originalFile, err)
		notify.Send(cfg, msgText+"\n\n"+deps.msg("transforming_original_failed")+". "+deps.msg("process_cancelled")+".")
		return fmt.Errorf("%s", msgText)
	}
	transformed, err := rewrite.Transform(f, cfg.RewriteConfig(), rewrite.HCLEvaluator{}, deps.warn)
	f.Close()
	if err != nil {
		msgText := fmt.Sprintf("%s: %s - %v", deps.msg("transformation_failed"), originalFile, err)
		addition := deps.msg("transforming_original_failed") + ". " + deps.msg("process_cancelled") + "."
		notify.Send(cfg, msgText+"\n\n"+addition)
		return fmt.Errorf("%s. %s", msgText, addition)
	}

	fileStem := strings.TrimSuffix(originalFile, filepath.Ext(originalFile))
	filesTimestamp := now.Format(cfg.Settings.Timeformats.Files)

	uploadsFailed := make(map[string][]rewriteconfig.Upload)
	var archivingFailed []string

	for group, events := range transformed {
		outName := fmt.Sprintf("%s_%s_%s.xml", group, fileStem, filesTimestamp)
		outPath := filepath.Join(cfg.Settings.Dirs.Transformed, outName)

		if err := os.WriteFile(outPath, rewrite.Serialize(events), 0o644); err != nil {
			logrus.WithError(err).Error(deps.msg("archiving_prevented") + ": " + outPath)
			continue
		}
		logrus.WithField("file", outPath).Info(deps.msg("file_written"))

		failed := upload.RunAll(cfg.Uploads, outPath, cfg.Filter.Residue, cfg.Split.Default)
		uploadsFailed[outName] = failed

		if len(failed) == 0 {
			if err := history.Archive(outPath, currentHistory); err != nil {
				logrus.WithError(err).Error(deps.msg("archiving_failed") + ": " + outName)
				archivingFailed = append(archivingFailed, outName)
			} else {
				logrus.WithField("file", outName).Info(deps.msg("archiving_successful"))
			}
		} else {
			logrus.Error(deps.msg("archiving_prevented") + ": " + outPath)
		}
	}

	if report := formatUploadReport(uploadsFailed); report != "" {
		notify.Send(cfg, deps.msg("upload_report")+":\n\n"+report)
	}
	if len(archivingFailed) > 0 {
		notify.Send(cfg, deps.msg("archiving_report")+":\n\n"+strings.Join(archivingFailed, "\n"))
	}

	originalHistory := filepath.Join(currentHistory, originalFile)
	if err := os.Rename(pathToOriginal, originalHistory); err != nil {
		addition := deps.msg("archiving_original_failed")
		msgText := fmt.Sprintf("%s: %s - %v", deps.msg("archiving_failed"), originalFile, err)
		notify.Send(cfg, msgText+"\n\n"+addition)
		return fmt.Errorf("%s. %s", msgText, addition)
	}
	logrus.WithField("file", originalFile).Info(deps.msg("archiving_successful"))
	return nil
}

func runConsistencyCheck(deps *pipelineDeps) {
	cfg := deps.cfg
	report := precheck.Check(cfg)
	if report.Empty() {
		return
	}
	if len(report.AllowBlockConflict) > 0 {
		warning := fmt.Sprintf("%s:\n  - %s", deps.msg("allow_block_conflict"), strings.Join(report.AllowBlockConflict, "\n  - "))
		logrus.Warn(warning)
		if cfg.Settings.InconsistencyNotification {
			notify.Send(cfg, warning)
		}
		return
	}

	var sections []string
	if len(report.SplittingWithoutAllowance) > 0 {
		sections = append(sections, fmt.Sprintf("- %s:\n\n%s\n", deps.msg("splitting_without_allowance"), notify.CompileWarnings(report.SplittingWithoutAllowance)))
	}
	if len(report.SplittingDespiteBlocking) > 0 {
		sections = append(sections, fmt.Sprintf("- %s:\n\n%s\n", deps.msg("splitting_despite_blocking"), notify.CompileWarnings(report.SplittingDespiteBlocking)))
	}
	if len(report.AllowanceWithoutSplitting) > 0 {
		sections = append(sections, fmt.Sprintf("- %s:\n\n%s\n", deps.msg("allowance_without_splitting"), notify.CompileWarnings(report.AllowanceWithoutSplitting)))
	}
	warnings := fmt.Sprintf("%s:\n\n%s", deps.msg("filter_split_conflict"), strings.Join(sections, "\n"))
	logrus.Warn(warnings)
	if cfg.Settings.InconsistencyNotification {
		notify.Send(cfg, warnings)
	}
}

// findOriginal requires exactly one file in dir, matching the original
// pipeline's "ambiguous intake directory" safeguard.
func findOriginal(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading intake directory %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	switch len(files) {
	case 0:
		return "", fmt.Errorf("no file found in intake directory %q", dir)
	case 1:
		return files[0], nil
	default:
		return "", fmt.Errorf("more than one file found in intake directory %q: %v", dir, files)
	}
}

func formatUploadReport(uploadsFailed map[string][]rewriteconfig.Upload) string {
	files := make([]string, 0, len(uploadsFailed))
	for file, failed := range uploadsFailed {
		if len(failed) > 0 {
			files = append(files, file)
		}
	}
	if len(files) == 0 {
		return ""
	}
	sort.Strings(files)

	lines := make([]string, len(files))
	for i, file := range files {
		failed := uploadsFailed[file]
		servers := make([]string, len(failed))
		for j, u := range failed {
			servers[j] = u.Server
		}
		lines[i] = fmt.Sprintf("%s: %v", file, servers)
	}
	return strings.Join(lines, "\n")
}
