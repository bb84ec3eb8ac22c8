package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/smallnest/graphrag/log"
)

// IndexData holds the raw tables of one indexing run.
type IndexData struct {
	Nodes         []NodeRow
	Entities      []EntityRow
	Reports       []ReportRow
	TextUnits     []TextUnitRow
	Relationships []RelationshipRow
	Covariates    []CovariateRow
}

// LoadIndexData reads the parquet tables from dir. When withCovariates is
// true the covariates table must be present as well; otherwise it is left
// empty even if the file exists.
func LoadIndexData(dir string, withCovariates bool) (*IndexData, error) {
	data := &IndexData{}

	var err error
	if data.Nodes, err = readTable[NodeRow](filepath.Join(dir, NodesFile)); err != nil {
		return nil, err
	}
	if data.Entities, err = readTable[EntityRow](filepath.Join(dir, EntitiesFile)); err != nil {
		return nil, err
	}
	if data.Reports, err = readTable[ReportRow](filepath.Join(dir, ReportsFile)); err != nil {
		return nil, err
	}
	if data.TextUnits, err = readTable[TextUnitRow](filepath.Join(dir, TextUnitsFile)); err != nil {
		return nil, err
	}
	if data.Relationships, err = readTable[RelationshipRow](filepath.Join(dir, RelationshipsFile)); err != nil {
		return nil, err
	}
	if withCovariates {
		if data.Covariates, err = readTable[CovariateRow](filepath.Join(dir, CovariatesFile)); err != nil {
			return nil, err
		}
	}

	log.Info("loaded index data from %s: %d nodes, %d entities, %d reports, %d text units, %d relationships, %d covariates",
		dir, len(data.Nodes), len(data.Entities), len(data.Reports), len(data.TextUnits), len(data.Relationships), len(data.Covariates))
	return data, nil
}

// readTable reads every row of one parquet file into a slice of T.
func readTable[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("parquet table not found: %w", err)
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(T), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet schema of %s: %w", path, err)
	}
	defer pr.ReadStop()

	rows := make([]T, pr.GetNumRows())
	if len(rows) == 0 {
		return nil, nil
	}
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", path, err)
	}
	return rows, nil
}
