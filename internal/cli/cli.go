// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pycrawl/internal/config"
	"pycrawl/internal/crawl"
	"pycrawl/internal/report"
	"pycrawl/internal/services/clipboard"
	"pycrawl/internal/services/opener"
	"pycrawl/internal/services/stream"
	"pycrawl/internal/tokenizer"
	"pycrawl/internal/utils"
)

const (
	rootUse              = "pycrawl"
	rootShortDescription = "pycrawl command line interface"
	rootLongDescription  = `pycrawl maps the structure of a Python codebase.
It walks a directory tree, extracts the top-level function and class
declarations of every Python source file, and writes a commented map artifact
plus a plain-text audit log of the walk.`

	crawlUse              = "crawl [path]"
	crawlAlias            = "c"
	crawlShortDescription = "crawl a directory and write its map (" + crawlAlias + ")"
	crawlLongDescription  = `Walk the given directory (default: the current working directory), extract
top-level declarations from every Python file, and write the commented map
artifact and the audit log. Progress is reported as the walk proceeds.`
	crawlUsageExample = `  # Crawl the current directory
  pycrawl crawl

  # Crawl a project, naming it in the map header, and open the result
  pycrawl crawl --title "OPEN-AIR Controller" --open ~/src/open-air

  # Exclude generated packages and print the map to stdout
  pycrawl crawl -e "generated*" --stdout .`

	mapFlagName       = "map"
	logFlagName       = "log"
	titleFlagName     = "title"
	exclusionFlagName = "e"
	stdoutFlagName    = "stdout"
	copyFlagName      = "copy"
	tokensFlagName    = "tokens"
	modelFlagName     = "model"
	openFlagName      = "open"
	configFlagName    = "config"
	versionFlagName   = "version"

	mapFlagDescription       = "map artifact file name"
	logFlagDescription       = "audit log file name"
	titleFlagDescription     = "title context for the map header"
	exclusionFlagDescription = "exclude entries matching pattern"
	stdoutFlagDescription    = "print the map to stdout"
	copyFlagDescription      = "copy the map to the system clipboard"
	tokensFlagDescription    = "report a token estimate for the map"
	modelFlagDescription     = "tokenizer model for the token estimate"
	openFlagDescription      = "open the written map in the system viewer"
	configFlagDescription    = "configuration file path"
	versionFlagDescription   = "display application version"

	versionTemplate = "pycrawl version: %s\n"
	defaultPath     = "."
	defaultTitle    = "this project"

	eventDirectoryFormat  = "dir   %s"
	eventFileFormat       = "file  %s (%d declarations)"
	eventSkipFormat       = "skip  %s (%s)"
	eventParseErrorFormat = "parse failure: %s"
	crawlStartFormat      = "crawling %s"
	crawlDoneFormat       = "crawl complete: %d directories, %d files, %d declarations, %d skipped, %d failures"
	mapWrittenFormat      = "map written to %s"
	logWrittenFormat      = "audit log written to %s"
	tokenCountFormat      = "map is %d tokens (%s)"
	copiedMessage         = "map copied to clipboard"
)

// crawlSettings holds the effective settings of one crawl invocation after
// configuration files and flags are merged.
type crawlSettings struct {
	rootPath    string
	mapPath     string
	logPath     string
	title       string
	exclude     []string
	printStdout bool
	copyToClip  bool
	countTokens bool
	tokenModel  string
	openMap     bool
}

// Execute runs the root command.
func Execute(loggerInstance *zap.Logger) error {
	rootCommand := newRootCommand(loggerInstance)
	return rootCommand.Execute()
}

func newRootCommand(loggerInstance *zap.Logger) *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			showVersion, _ := command.Flags().GetBool(versionFlagName)
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.ApplicationVersion())
				return nil
			}
			return command.Help()
		},
	}
	rootCommand.Flags().Bool(versionFlagName, false, versionFlagDescription)
	rootCommand.AddCommand(newCrawlCommand(loggerInstance))
	return rootCommand
}

func newCrawlCommand(loggerInstance *zap.Logger) *cobra.Command {
	crawlCommand := &cobra.Command{
		Use:     crawlUse,
		Aliases: []string{crawlAlias},
		Short:   crawlShortDescription,
		Long:    crawlLongDescription,
		Example: crawlUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			settings, settingsError := resolveCrawlSettings(command, arguments)
			if settingsError != nil {
				return settingsError
			}
			return runCrawl(command.Context(), loggerInstance, settings)
		},
	}
	crawlCommand.Flags().String(mapFlagName, "", mapFlagDescription)
	crawlCommand.Flags().String(logFlagName, "", logFlagDescription)
	crawlCommand.Flags().String(titleFlagName, "", titleFlagDescription)
	crawlCommand.Flags().StringArrayP(exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	crawlCommand.Flags().Bool(stdoutFlagName, false, stdoutFlagDescription)
	crawlCommand.Flags().Bool(copyFlagName, false, copyFlagDescription)
	crawlCommand.Flags().Bool(tokensFlagName, false, tokensFlagDescription)
	crawlCommand.Flags().String(modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	crawlCommand.Flags().Bool(openFlagName, false, openFlagDescription)
	crawlCommand.Flags().String(configFlagName, "", configFlagDescription)
	return crawlCommand
}

// resolveCrawlSettings merges configuration file values with command flags;
// flags that were set explicitly win.
func resolveCrawlSettings(command *cobra.Command, arguments []string) (crawlSettings, error) {
	explicitConfigPath, _ := command.Flags().GetString(configFlagName)
	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: explicitConfigPath,
	})
	if configurationError != nil {
		return crawlSettings{}, configurationError
	}
	crawlConfiguration := applicationConfiguration.Crawl

	settings := crawlSettings{
		rootPath:    defaultPath,
		mapPath:     report.DefaultMapFileName,
		logPath:     report.DefaultLogFileName,
		title:       defaultTitle,
		exclude:     crawlConfiguration.Exclude,
		printStdout: boolValue(crawlConfiguration.Stdout),
		copyToClip:  boolValue(crawlConfiguration.Clipboard),
		countTokens: boolValue(crawlConfiguration.Tokens.Enabled),
		tokenModel:  tokenizer.DefaultModel,
	}
	if len(arguments) == 1 {
		settings.rootPath = arguments[0]
	}
	if crawlConfiguration.MapFile != "" {
		settings.mapPath = crawlConfiguration.MapFile
	}
	if crawlConfiguration.LogFile != "" {
		settings.logPath = crawlConfiguration.LogFile
	}
	if crawlConfiguration.Title != "" {
		settings.title = crawlConfiguration.Title
	}
	if crawlConfiguration.Tokens.Model != "" {
		settings.tokenModel = crawlConfiguration.Tokens.Model
	}

	flags := command.Flags()
	if flags.Changed(mapFlagName) {
		settings.mapPath, _ = flags.GetString(mapFlagName)
	}
	if flags.Changed(logFlagName) {
		settings.logPath, _ = flags.GetString(logFlagName)
	}
	if flags.Changed(titleFlagName) {
		settings.title, _ = flags.GetString(titleFlagName)
	}
	if flags.Changed(exclusionFlagName) {
		flagExcludes, _ := flags.GetStringArray(exclusionFlagName)
		settings.exclude = append(settings.exclude, flagExcludes...)
	}
	if flags.Changed(stdoutFlagName) {
		settings.printStdout, _ = flags.GetBool(stdoutFlagName)
	}
	if flags.Changed(copyFlagName) {
		settings.copyToClip, _ = flags.GetBool(copyFlagName)
	}
	if flags.Changed(tokensFlagName) {
		settings.countTokens, _ = flags.GetBool(tokensFlagName)
	}
	if flags.Changed(modelFlagName) {
		settings.tokenModel, _ = flags.GetString(modelFlagName)
	}
	if flags.Changed(openFlagName) {
		settings.openMap, _ = flags.GetBool(openFlagName)
	}
	settings.exclude = utils.DeduplicatePatterns(settings.exclude)
	return settings, nil
}

// runCrawl performs one full crawl: walk, live progress, audit log, map
// artifact, and the optional post-crawl actions.
func runCrawl(ctx context.Context, loggerInstance *zap.Logger, settings crawlSettings) error {
	if ctx == nil {
		ctx = context.Background()
	}

	absoluteRootPath, rootError := crawl.ValidateRoot(settings.rootPath)
	if rootError != nil {
		return rootError
	}

	sink := report.NewSink(settings.mapPath, settings.logPath)
	if beginError := sink.Begin(absoluteRootPath); beginError != nil {
		return beginError
	}
	loggerInstance.Info(fmt.Sprintf(crawlStartFormat, absoluteRootPath))

	totals := &crawl.Tally{}
	options := crawl.Options{
		RootPath:        absoluteRootPath,
		TitleContext:    settings.title,
		ExcludePatterns: settings.exclude,
		Observers:       []crawl.Observer{sink, totals},
	}

	result, crawlError := streamCrawlWithProgress(ctx, loggerInstance, options)
	if crawlError != nil {
		sink.Fail(crawlError)
		return crawlError
	}

	if writeMapError := sink.WriteMap(result.Document); writeMapError != nil {
		sink.Fail(writeMapError)
		return writeMapError
	}
	if finishError := sink.Finish(*totals); finishError != nil {
		return finishError
	}
	loggerInstance.Info(fmt.Sprintf(crawlDoneFormat,
		totals.Directories, totals.Files, totals.Declarations, totals.Skipped, totals.Failures))
	loggerInstance.Info(fmt.Sprintf(mapWrittenFormat, settings.mapPath))
	loggerInstance.Info(fmt.Sprintf(logWrittenFormat, settings.logPath))

	return runPostCrawlActions(loggerInstance, settings, result.Document)
}

// streamCrawlWithProgress runs the crawl on a worker goroutine while the
// current goroutine drains visit events, so interactive front ends stay
// responsive during large crawls.
func streamCrawlWithProgress(ctx context.Context, loggerInstance *zap.Logger, options crawl.Options) (*crawl.Result, error) {
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan stream.Event)

	var result *crawl.Result
	group.Go(func() error {
		defer close(events)
		streamResult, streamError := stream.StreamCrawl(streamCtx, options, events)
		if streamError != nil {
			return streamError
		}
		result = streamResult
		return nil
	})

	group.Go(func() error {
		for event := range events {
			logCrawlEvent(loggerInstance, event)
		}
		return nil
	})

	if groupError := group.Wait(); groupError != nil && !errors.Is(groupError, context.Canceled) {
		return nil, groupError
	}
	if result == nil {
		return nil, ctx.Err()
	}
	return result, nil
}

func logCrawlEvent(loggerInstance *zap.Logger, event stream.Event) {
	switch event.Kind {
	case stream.EventKindDirectory:
		loggerInstance.Info(fmt.Sprintf(eventDirectoryFormat, event.Path))
	case stream.EventKindFile:
		loggerInstance.Info(fmt.Sprintf(eventFileFormat, event.Path, len(event.Declarations)))
	case stream.EventKindSkip:
		loggerInstance.Info(fmt.Sprintf(eventSkipFormat, event.Path, event.Reason))
	case stream.EventKindParseError:
		loggerInstance.Warn(fmt.Sprintf(eventParseErrorFormat, event.Failure))
	}
}

// runPostCrawlActions applies the optional stdout, clipboard, token, and open
// actions to the rendered document.
func runPostCrawlActions(loggerInstance *zap.Logger, settings crawlSettings, document string) error {
	if settings.printStdout {
		fmt.Println(document)
	}
	if settings.copyToClip {
		copier := clipboard.NewService()
		if copyError := copier.Copy(document); copyError != nil {
			return fmt.Errorf("copying map to clipboard: %w", copyError)
		}
		loggerInstance.Info(copiedMessage)
	}
	if settings.countTokens {
		counter, counterName, counterError := tokenizer.NewCounter(settings.tokenModel)
		if counterError != nil {
			return counterError
		}
		tokenCount, countError := counter.CountString(document)
		if countError != nil {
			return fmt.Errorf("counting map tokens: %w", countError)
		}
		loggerInstance.Info(fmt.Sprintf(tokenCountFormat, tokenCount, counterName))
	}
	if settings.openMap {
		launcher := opener.NewService()
		absoluteMapPath, absoluteError := filepath.Abs(settings.mapPath)
		if absoluteError != nil {
			return absoluteError
		}
		if openError := launcher.Open(absoluteMapPath); openError != nil {
			return openError
		}
	}
	return nil
}

func boolValue(value *bool) bool {
	return value != nil && *value
}
