package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/domain"
)

type formatsResponse struct {
	VideoInfo app.VideoInfo            `json:"video_info"`
	Formats   domain.ClassifiedFormats `json:"formats"`
}

type historyResponse struct {
	Downloads []domain.DownloadRecord `json:"downloads"`
	Count     int                     `json:"count"`
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats [url]",
		Short: "List the stream variants offered by a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ensureServer(cmd)
			var resp formatsResponse
			if err := client().doJSON(http.MethodPost, "/formats", map[string]string{"url": args[0]}, &resp); err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:    %s\n", resp.VideoInfo.Title)
			fmt.Fprintf(out, "Uploader: %s\n", resp.VideoInfo.Uploader)
			fmt.Fprintf(out, "Duration: %.0fs\n", resp.VideoInfo.Duration)

			sections := []struct {
				name     string
				variants []domain.StreamVariant
			}{
				{"Video + audio", resp.Formats.VideoAudio},
				{"Video + audio (oversized)", resp.Formats.VideoAudioBlocked},
				{"Video only", resp.Formats.VideoOnly},
				{"Audio only", resp.Formats.AudioOnly},
			}
			for _, sec := range sections {
				if len(sec.variants) == 0 {
					continue
				}
				fmt.Fprintf(out, "\n%s:\n", sec.name)
				w := newTable(cmd)
				fmt.Fprintln(w, "ID\tEXT\tRES\tSIZE\tNOTE")
				for _, v := range sec.variants {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.ID, v.Ext, v.Res, v.SizeStr, v.FormatNote)
				}
				w.Flush()
			}
			return nil
		},
	}
}

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download media through the server",
	}

	kinds := []struct {
		kind  domain.DownloadKind
		short string
	}{
		{domain.KindVideo, "Download a video variant (requires --format-id)"},
		{domain.KindAudio, "Download audio as mp3"},
		{domain.KindShort, "Download a short-form video"},
		{domain.KindReel, "Download a reel"},
	}
	for _, k := range kinds {
		cmd.AddCommand(newDownloadKindCmd(k.kind, k.short))
	}
	return cmd
}

func newDownloadKindCmd(kind domain.DownloadKind, short string) *cobra.Command {
	var formatID, saveDir string
	c := &cobra.Command{
		Use:   string(kind) + " [url]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind == domain.KindVideo && formatID == "" {
				return fmt.Errorf("--format-id is required for video downloads (see 'mediagrab formats')")
			}
			ensureServer(cmd)

			body := map[string]string{"url": args[0]}
			if formatID != "" {
				body["format_id"] = formatID
			}
			var resp domain.DownloadResult
			if err := client().doJSON(http.MethodPost, "/download/"+string(kind), body, &resp); err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Downloaded: %s\n", resp.Title)
			fmt.Fprintf(out, "ID: %s\n", resp.ID)
			for _, f := range resp.Files {
				fmt.Fprintf(out, "  %s (%s)\n", f.Filename, f.SizeStr)
				if saveDir != "" {
					path, err := client().downloadTo("/file/"+url.PathEscape(f.Filename), saveDir, f.Filename)
					if err != nil {
						return fmt.Errorf("failed to save %s: %w", f.Filename, err)
					}
					fmt.Fprintf(out, "  saved to %s\n", path)
				}
			}
			return nil
		},
	}
	if kind != domain.KindShort && kind != domain.KindReel {
		c.Flags().StringVarP(&formatID, "format-id", "f", "", "Engine format id")
	}
	c.Flags().StringVarP(&saveDir, "save", "o", "", "Also copy the files into this local directory")
	return c
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List your download history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ensureServer(cmd)
			var resp historyResponse
			if err := client().doJSON(http.MethodGet, "/downloads", nil, &resp); err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, resp)
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "ID\tKIND\tSTATUS\tTITLE\tSIZE\tCREATED")
			for _, d := range resp.Downloads {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					truncate(d.ID, 8),
					d.Kind,
					d.Status,
					truncate(d.Title, 40),
					d.SizeStr(),
					d.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show download statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ensureServer(cmd)
			var stats domain.DownloadStats
			if err := client().doJSON(http.MethodGet, "/downloads/stats", nil, &stats); err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Download Statistics:")
			fmt.Fprintf(out, "  Total:      %d\n", stats.Total)
			fmt.Fprintf(out, "  Processing: %d\n", stats.Processing)
			fmt.Fprintf(out, "  Completed:  %d\n", stats.Completed)
			fmt.Fprintf(out, "  Failed:     %d\n", stats.Failed)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get [id]",
		Short: "Show one download",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ensureServer(cmd)
			var d domain.DownloadRecord
			if err := client().doJSON(http.MethodGet, "/downloads/"+url.PathEscape(args[0]), nil, &d); err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, d)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Download Details:")
			fmt.Fprintf(out, "  ID:       %s\n", d.ID)
			fmt.Fprintf(out, "  URL:      %s\n", d.URL)
			fmt.Fprintf(out, "  Kind:     %s\n", d.Kind)
			fmt.Fprintf(out, "  Platform: %s\n", d.Platform)
			fmt.Fprintf(out, "  Status:   %s\n", d.Status)
			fmt.Fprintf(out, "  Title:    %s\n", d.Title)
			fmt.Fprintf(out, "  Created:  %s\n", d.CreatedAt.Format("2006-01-02 15:04:05"))
			if d.FilePath != "" {
				fmt.Fprintf(out, "  File:     %s (%s)\n", d.FilePath, d.SizeStr())
			}
			if d.ErrorMessage != "" {
				fmt.Fprintf(out, "  Error:    %s (%s)\n", d.ErrorMessage, d.ErrorKind)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a download and its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ensureServer(cmd)
			if err := client().doJSON(http.MethodDelete, "/downloads/"+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Download deleted successfully")
			return nil
		},
	})

	return cmd
}

func newFetchFileCmd() *cobra.Command {
	var outDir string
	var byID bool
	cmd := &cobra.Command{
		Use:   "fetch-file [filename|id]",
		Short: "Copy a downloaded file from the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ensureServer(cmd)
			path := "/file/" + url.PathEscape(args[0])
			if byID {
				path = "/downloads/" + url.PathEscape(args[0]) + "/file"
			}
			dest, err := client().downloadTo(path, outDir, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Destination directory")
	cmd.Flags().BoolVar(&byID, "id", false, "Treat the argument as a download id")
	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp map[string]string
			if err := client().doJSON(http.MethodGet, "/health", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server %s: %s\n", serverURL, resp["status"])
			return nil
		},
	}
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the identity behind the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ensureServer(cmd)
			var resp struct {
				User domain.UserIdentity `json:"user"`
			}
			if err := client().doJSON(http.MethodGet, "/me", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User: %s", resp.User.ID)
			if resp.User.Name != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", resp.User.Name)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newLogsCmd() *cobra.Command {
	var date, query string
	var limit int
	cmd := &cobra.Command{
		Use:   "logs [fetch|error]",
		Short: "Show server event logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ensureServer(cmd)
			params := url.Values{}
			params.Set("limit", strconv.Itoa(limit))
			if date != "" {
				params.Set("date", date)
			}
			if query != "" {
				params.Set("q", query)
			}

			var resp struct {
				Entries []struct {
					Timestamp string                 `json:"ts"`
					Level     string                 `json:"level"`
					Message   string                 `json:"msg"`
					Fields    map[string]interface{} `json:"fields"`
				} `json:"entries"`
			}
			path := "/logs/" + url.PathEscape(args[0]) + "?" + params.Encode()
			if err := client().doJSON(http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, resp)
			}
			for _, e := range resp.Entries {
				fields, _ := json.Marshal(e.Fields)
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-5s %s %s\n", e.Timestamp, e.Level, e.Message, fields)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to read (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only entries containing this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum entries")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage server configuration files",
	}
	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.SaveConfig(domain.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&path, "path", "p", "configs/config.yaml", "Destination file")
	cmd.AddCommand(initCmd)
	return cmd
}
