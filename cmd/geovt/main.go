package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/platgeo/geovt/internal/db"
	"github.com/platgeo/geovt/internal/server"
	"github.com/platgeo/geovt/internal/service"
	"github.com/platgeo/geovt/internal/source"
	"github.com/platgeo/geovt/internal/vt"
)

// Options defines all CLI flags and env vars for the geovt server.
// Flags: --host, --port, --data-dir
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR
type Options struct {
	Host    string `doc:"Host to bind to" default:"0.0.0.0"`
	Port    int    `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir string `doc:"Directory for source files, tile archives, and the DuckDB catalog" default:".data"`
}

func newServer(opts *Options) *server.Server {
	return server.New(server.Config{
		Host:    opts.Host,
		Port:    fmt.Sprintf("%d", opts.Port),
		DataDir: opts.DataDir,
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		srv := newServer(opts)

		hooks.OnStart(func() {
			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("geovt API server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s\n", opts.DataDir)
			fmt.Println()
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatalf("Server error: %v", err)
			}
		})
	})

	cli.Root().Use = "geovt"
	cli.Root().Short = "GeoJSON vector tile pyramid engine"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := newServer(opts)
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// build subcommand: build the index and write a PMTiles archive, no server involved
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build a PMTiles archive from a GeoJSON or GeoParquet source, no server",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			maxZoom, _ := cmd.Flags().GetInt("max-zoom")
			indexMaxZoom, _ := cmd.Flags().GetInt("index-max-zoom")
			if input == "" || output == "" {
				fmt.Fprintln(os.Stderr, "Error: --input and --output are required")
				os.Exit(1)
			}

			idx, name, err := buildIndex(input, maxZoom, indexMaxZoom)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error building index: %v\n", err)
				os.Exit(1)
			}

			out, err := os.Create(output)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
				os.Exit(1)
			}
			defer out.Close()

			archiver := service.NewArchiver(idx)
			if err := archiver.WriteArchive(out); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing archive: %v\n", err)
				os.Exit(1)
			}

			byZoom, total := idx.Stats()
			fmt.Printf("Built %s from %s: %d materialized tiles across %d zoom levels -> %s\n", name, input, total, len(byZoom), output)
		}),
	}
	buildCmd.Flags().StringP("input", "i", "", "Source GeoJSON or GeoParquet file")
	buildCmd.Flags().StringP("output", "o", "", "Output .pmtiles file")
	buildCmd.Flags().Int("max-zoom", vt.DefaultOptions().MaxZoom, "Deepest zoom reachable by drill-down")
	buildCmd.Flags().Int("index-max-zoom", vt.DefaultOptions().IndexMaxZoom, "Deepest zoom pre-materialized during build")
	cli.Root().AddCommand(buildCmd)

	// bench subcommand: time the build, then a Stats query over the built index
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Time index construction and a stats query for a source",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			input, _ := cmd.Flags().GetString("input")
			if input == "" {
				fmt.Fprintln(os.Stderr, "Error: --input is required")
				os.Exit(1)
			}
			maxZoom, _ := cmd.Flags().GetInt("max-zoom")
			indexMaxZoom, _ := cmd.Flags().GetInt("index-max-zoom")

			start := time.Now()
			idx, _, err := buildIndex(input, maxZoom, indexMaxZoom)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error building index: %v\n", err)
				os.Exit(1)
			}
			buildElapsed := time.Since(start)

			drillStart := time.Now()
			byZoom, total := idx.Stats()
			drillElapsed := time.Since(drillStart)

			fmt.Printf("build:  %v\n", buildElapsed)
			fmt.Printf("stats:  %v\n", drillElapsed)
			fmt.Printf("tiles:  %d\n", total)
			for z := 0; z <= indexMaxZoom; z++ {
				if n, ok := byZoom[uint8(z)]; ok {
					fmt.Printf("  z%-2d  %d\n", z, n)
				}
			}
		}),
	}
	benchCmd.Flags().StringP("input", "i", "", "Source GeoJSON or GeoParquet file")
	benchCmd.Flags().Int("max-zoom", vt.DefaultOptions().MaxZoom, "Deepest zoom reachable by drill-down")
	benchCmd.Flags().Int("index-max-zoom", vt.DefaultOptions().IndexMaxZoom, "Deepest zoom pre-materialized during build")
	cli.Root().AddCommand(benchCmd)

	cli.Run()
}

// buildIndex loads a single source file and builds a live tile index from
// it, the shared core of the build and bench subcommands.
func buildIndex(input string, maxZoom, indexMaxZoom int) (*service.IndexService, string, error) {
	name := filepath.Base(input)

	conn, _ := db.Get(db.Config{DataDir: filepath.Dir(input), DBName: "geovt-cli"})

	fc, err := source.LoadFile(input, conn)
	if err != nil {
		return nil, "", err
	}

	opts := vt.DefaultOptions()
	opts.MaxZoom = maxZoom
	opts.IndexMaxZoom = indexMaxZoom

	idx := service.NewIndexService(opts)
	idx.Build(name, fc)
	return idx, name, nil
}
