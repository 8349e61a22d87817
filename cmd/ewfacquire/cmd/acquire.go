package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	libewf "github.com/hoyt-harness/libewf"
)

var (
	acquireChunkSize       uint32
	acquireSegmentSize     uint64
	acquireCompression     string
	acquireFormat          string
	acquireCaseNumber      string
	acquireEvidenceNumber  string
	acquireExaminer        string
	acquireDescription     string
	acquireNotes           string
	acquireUnrestrictTable bool
)

var acquireCmd = &cobra.Command{
	Use:   "acquire [input] [output-basename]",
	Short: "Acquire a raw device or image into an EWF segment chain",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		in, err := os.Open(args[0])
		if err != nil {
			die("failed to open input: %s", err)
		}
		defer in.Close()

		media := libewf.MediaValues{ChunkSize: acquireChunkSize}
		if info, err := in.Stat(); err == nil && info.Mode().IsRegular() && info.Size() > 0 {
			media.MediaSize = uint64(info.Size())
			media.AmountOfChunks = uint32((media.MediaSize + uint64(acquireChunkSize) - 1) / uint64(acquireChunkSize))
		}

		flags := libewf.FormatFlags{
			Format:                 parseFormat(acquireFormat),
			EWFFormat:              libewf.EWFFormatE01,
			CompressionLevel:       parseCompression(acquireCompression),
			UnrestrictOffsetAmount: acquireUnrestrictTable,
		}

		headers := libewf.HeaderValues{
			CaseNumber:     acquireCaseNumber,
			EvidenceNumber: acquireEvidenceNumber,
			Examiner:       acquireExaminer,
			Description:    acquireDescription,
			Notes:          acquireNotes,
		}

		pool := libewf.NewFilePool()
		w, err := libewf.NewWriter(pool, args[1], media, flags, headers)
		if err != nil {
			die("failed to open output segment chain: %s", err)
		}
		if err := w.SetSegmentFileSize(acquireSegmentSize); err != nil {
			die("invalid segment size: %s", err)
		}

		if _, err := io.Copy(w, in); err != nil {
			die("acquisition failed: %s", err)
		}
		if err := w.Close(nil); err != nil {
			die("failed to finalize segment chain: %s", err)
		}
	},
}

func parseFormat(s string) libewf.Format {
	switch s {
	case "encase1":
		return libewf.FormatEnCase1
	case "encase2":
		return libewf.FormatEnCase2
	case "encase3":
		return libewf.FormatEnCase3
	case "encase4":
		return libewf.FormatEnCase4
	case "encase5":
		return libewf.FormatEnCase5
	case "encase6":
		return libewf.FormatEnCase6
	case "ewfx":
		return libewf.FormatEWFX
	default:
		return libewf.FormatEnCase6
	}
}

func parseCompression(s string) libewf.CompressionLevel {
	switch s {
	case "best":
		return libewf.CompressionBest
	case "none":
		return libewf.CompressionNone
	default:
		return libewf.CompressionDefault
	}
}

func init() {
	rootCmd.AddCommand(acquireCmd)
	acquireCmd.Flags().Uint32VarP(&acquireChunkSize, "chunk-size", "c", 64*512, "chunk size, in bytes")
	acquireCmd.Flags().Uint64VarP(&acquireSegmentSize, "segment-size", "S", libewf.DefaultSegmentFileSize, "target segment file size, in bytes")
	acquireCmd.Flags().StringVarP(&acquireCompression, "compression", "", "default", "compression level (none, default, best)")
	acquireCmd.Flags().StringVarP(&acquireFormat, "format", "f", "encase6", "EWF dialect (encase1..encase6, ewfx)")
	acquireCmd.Flags().StringVarP(&acquireCaseNumber, "case-number", "", "", "case number recorded in the header section")
	acquireCmd.Flags().StringVarP(&acquireEvidenceNumber, "evidence-number", "", "", "evidence number recorded in the header section")
	acquireCmd.Flags().StringVarP(&acquireExaminer, "examiner", "", "", "examiner name recorded in the header section")
	acquireCmd.Flags().StringVarP(&acquireDescription, "description", "", "", "description recorded in the header section")
	acquireCmd.Flags().StringVarP(&acquireNotes, "notes", "", "", "notes recorded in the header section")
	acquireCmd.Flags().BoolVarP(&acquireUnrestrictTable, "unrestrict-offset-table", "", false, "allow a chunks section to exceed the standard offset table capacity")

	_ = viper.BindPFlag("chunk-size", acquireCmd.Flags().Lookup("chunk-size"))
}
