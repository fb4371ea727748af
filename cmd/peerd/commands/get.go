package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nilsio/trackerd/pkg/peer"
	"github.com/nilsio/trackerd/pkg/peerconfig"
	"github.com/nilsio/trackerd/pkg/trackerclient"
)

var (
	getFileName string
	getFileType string
)

var getCmd = &cobra.Command{
	Use:   "get <file-id>",
	Short: "Look up hosts for a file and download it from the first one found",
	Long: `get logs into the tracker just long enough to resolve which live
peers host the given file id, then downloads the file directly from the
first host using the Peer Downloader. The file's size is not passed to
the downloader, so no progress percentage is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVar(&getFileName, "file-name", "", "local file name to save as (defaults to file-<id>)")
	getCmd.Flags().StringVar(&getFileType, "file-type", "bin", "local file extension to save as")
}

func runGet(cmd *cobra.Command, args []string) error {
	var fileID uint64
	if _, err := fmt.Sscanf(args[0], "%d", &fileID); err != nil {
		return fmt.Errorf("invalid file id %q: %w", args[0], err)
	}

	cfg, err := peerconfig.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	tracker := trackerclient.New(cfg.Tracker.URL, cfg.Tracker.RequestTimeout)

	login, err := tracker.ConnectToServer(cfg.Identity.Name, cfg.Identity.Password, cfg.Identity.AdvertiseIP, cfg.Transfer.ListenPort)
	if err != nil {
		return fmt.Errorf("connect to tracker: %w", err)
	}
	if login.Tag != "NEW" && login.Tag != "UPDATE" && login.Tag != "OK" {
		return fmt.Errorf("tracker rejected login: %s", login.Tag)
	}
	token := login.Token
	defer func() { _, _ = tracker.DisconnectFromServer(token, cfg.Identity.Name) }()

	tag, hosts, err := tracker.GetFileHostInfo(token, cfg.Identity.Name, fileID)
	if err != nil {
		return fmt.Errorf("look up hosts: %w", err)
	}
	if tag != "OK" || len(hosts) == 0 {
		return fmt.Errorf("no live host found for file %d (tag=%s)", fileID, tag)
	}

	host := hosts[0]
	fileName := getFileName
	if fileName == "" {
		fileName = fmt.Sprintf("file-%d", fileID)
	}

	localPath, err := peer.Download(host.IP, host.Port, host.Path, fileName, getFileType, 0, cfg.Transfer.DownloadDir, func(percent int) {
		cmd.Printf("\r%s: %d%%", fileName, percent)
	})
	cmd.Println()
	if err != nil {
		return fmt.Errorf("download from %s:%d: %w", host.IP, host.Port, err)
	}

	cmd.Printf("downloaded to %s\n", localPath)
	return nil
}
