package domain

// DatasetRepository loads the read-only reference data for a run: the story
// collection, the skill taxonomy, and the rubric. Implementations live in
// the storage layer; the engine never reads files directly.
type DatasetRepository interface {
	LoadDocuments() ([]Document, error)
	LoadTaxonomy() (*Taxonomy, error)
	LoadRubric() (Rubric, error)
}

// ResultRepository persists completed review runs as machine-readable
// artifacts consumed by the report layer.
type ResultRepository interface {
	SaveRun(run *ReviewRun) error
	LoadLatestRun() (*ReviewRun, error)
}
