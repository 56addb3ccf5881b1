package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/stuaninauts/fipe-cli/internal/engine"
	"github.com/stuaninauts/fipe-cli/internal/model"
	"github.com/stuaninauts/fipe-cli/internal/reactive"
	"github.com/stuaninauts/fipe-cli/internal/table"
)

// Parameter names mirror the interactive front end's control ids.
var rankingParams = []string{
	"ano_ref", "ano_fab", "analise", "ordem",
	"combustivel", "cambio",
	"choose_tam_motor", "tam_motor_min", "tam_motor_max",
	"choose_tipo_motor", "tipo_motor",
	"switch_marcas", "marcas",
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Explore rankings in a reactive read-eval loop",
	Long: "Reads parameter writes from stdin and recomputes only the derived outputs whose " +
		"declared dependencies changed. Commands: set <param> <value>, show, params, exit.",
	RunE: func(_ *cobra.Command, _ []string) error {
		tbl, err := table.Load(cfg.Data.DatabasePath)
		if err != nil {
			return err
		}

		g := newRankingGraph(tbl, cfg.Engine.DefaultLimit)

		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "":
			case line == "exit" || line == "quit":
				return nil
			case line == "params":
				for _, p := range append([]string{"qntd"}, rankingParams...) {
					fmt.Printf("%-18s %v\n", p, g.Param(p))
				}
			case line == "show":
				if err := showRanking(g); err != nil {
					fmt.Println(err)
				}
			case strings.HasPrefix(line, "set "):
				if err := setParam(g, line[len("set "):]); err != nil {
					fmt.Println(err)
				}
			default:
				fmt.Println("commands: set <param> <value>, show, params, exit")
			}
			fmt.Print("> ")
		}
		return scanner.Err()
	},
}

// newRankingGraph declares the derived outputs and their parameter sets.
// The displacement sub-controls form a two-level dependency: their
// visibility depends only on the toggle, the ranking on toggle and bounds.
func newRankingGraph(tbl *table.Table, defaultLimit int) *reactive.Graph {
	g := reactive.New()

	g.Set("ano_ref", 2023)
	g.Set("ano_fab", 2023)
	g.Set("analise", "marca")
	g.Set("ordem", "desc")
	g.Set("qntd", defaultLimit)
	g.Set("combustivel", []string{"g", "a", "d", "e"})
	g.Set("cambio", []string{"m", "a"})
	g.Set("choose_tam_motor", false)
	g.Set("tam_motor_min", 0.0)
	g.Set("tam_motor_max", 0.0)
	g.Set("choose_tipo_motor", false)
	g.Set("tipo_motor", []string{})
	g.Set("switch_marcas", false)
	g.Set("marcas", []string{})

	g.Define("tam_motor_controls", []string{"choose_tam_motor"}, func(p map[string]any) (any, error) {
		return p["choose_tam_motor"].(bool), nil
	})
	g.Define("tipo_motor_controls", []string{"choose_tipo_motor"}, func(p map[string]any) (any, error) {
		return p["choose_tipo_motor"].(bool), nil
	})
	g.Define("title", rankingParams, func(p map[string]any) (any, error) {
		return engine.Describe(requestFromParams(p, defaultLimit)), nil
	})
	g.Define("ranking", append([]string{"qntd"}, rankingParams...), func(p map[string]any) (any, error) {
		return engine.Rank(tbl, requestFromParams(p, defaultLimit)), nil
	})
	return g
}

func requestFromParams(p map[string]any, defaultLimit int) model.RankRequest {
	req := model.DefaultRankRequest()
	req.RefYear = p["ano_ref"].(int)
	req.ManufactureYear = p["ano_fab"].(int)
	if p["analise"].(string) == "modelo" {
		req.Dimension = model.DimensionModel
	}
	req.Ascending = p["ordem"].(string) == "asc"
	if v, ok := p["qntd"].(int); ok && v > 0 {
		req.Limit = v
	} else {
		req.Limit = defaultLimit
	}

	req.Fuels = nil
	for _, f := range p["combustivel"].([]string) {
		req.Fuels = append(req.Fuels, model.FuelType(f))
	}
	req.Transmissions = nil
	for _, t := range p["cambio"].([]string) {
		req.Transmissions = append(req.Transmissions, model.Transmission(t))
	}
	req.DisplacementFilter = p["choose_tam_motor"].(bool)
	req.DisplacementMin = p["tam_motor_min"].(float64)
	req.DisplacementMax = p["tam_motor_max"].(float64)
	req.EngineTypeFilter = p["choose_tipo_motor"].(bool)
	req.EngineTypes = p["tipo_motor"].([]string)
	req.BrandFilter = p["switch_marcas"].(bool)
	req.Brands = p["marcas"].([]string)
	return req
}

func showRanking(g *reactive.Graph) error {
	title, err := g.Get("title")
	if err != nil {
		return err
	}
	ranking, err := g.Get("ranking")
	if err != nil {
		return err
	}

	fmt.Println(title.(string))
	result := ranking.(model.RankedResult)
	for _, group := range result {
		fmt.Printf("%-45s R$ %.2f\n", group.Key, group.MeanPrice)
	}
	if len(result) == 0 {
		fmt.Println("(nenhum resultado)")
	}
	return nil
}

// setParam parses "param value" and writes the typed value into the graph.
func setParam(g *reactive.Graph, args string) error {
	name, value, ok := strings.Cut(args, " ")
	if !ok {
		return eris.New("usage: set <param> <value>")
	}
	value = strings.TrimSpace(value)

	switch name {
	case "ano_ref", "ano_fab", "qntd":
		v, err := strconv.Atoi(value)
		if err != nil {
			return eris.Errorf("%s must be an integer", name)
		}
		g.Set(name, v)
	case "analise", "ordem":
		g.Set(name, value)
	case "tam_motor_min", "tam_motor_max":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return eris.Errorf("%s must be a number", name)
		}
		g.Set(name, v)
	case "choose_tam_motor", "choose_tipo_motor", "switch_marcas":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return eris.Errorf("%s must be true or false", name)
		}
		g.Set(name, v)
	case "combustivel", "cambio", "tipo_motor", "marcas":
		if value == "none" {
			g.Set(name, []string{})
		} else {
			g.Set(name, strings.Split(value, ","))
		}
	default:
		return eris.Errorf("unknown parameter %q", name)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
