package neo4j

import "github.com/act-placemat/normalizer/internal/schema"

type Statement struct {
	Query  string
	Params map[string]any
}

const (
	mergeRecord = `
		MERGE (r:Record {id: $id})
		SET r.kind = $kind,
		    r.title = $title,
		    r.source_type = $source_type,
		    r.updated_at = timestamp()
	`

	mergeTheme = `
		MATCH (r:Record {id: $id})
		MERGE (t:Theme {name: $name})
		MERGE (r)-[:HAS_THEME]->(t)
	`

	mergeExpertise = `
		MATCH (r:Record {id: $id})
		MERGE (e:Expertise {name: $name})
		MERGE (r)-[:HAS_EXPERTISE]->(e)
	`

	mergeSource = `
		MATCH (r:Record {id: $id})
		MERGE (s:Source {id: $source_id})
		SET s.source_type = $source_type
		MERGE (r)-[c:CHUNK_OF]->(s)
		SET c.chunk_index = $chunk_index,
		    c.total_chunks = $total_chunks
	`
)

// Statements builds the Cypher writes for records, in record order.
func Statements(records []schema.Record) []Statement {
	var out []Statement
	for _, rec := range records {
		doc := rec.AsDocument()
		out = append(out, Statement{Query: mergeRecord, Params: map[string]any{
			"id":          rec.RecordID(),
			"kind":        string(rec.Kind()),
			"title":       doc.Title,
			"source_type": string(doc.SourceType),
		}})

		switch r := rec.(type) {
		case *schema.Story:
			for _, theme := range r.Themes {
				out = append(out, Statement{Query: mergeTheme, Params: map[string]any{"id": r.ID, "name": theme}})
			}
		case *schema.Storyteller:
			for _, area := range r.ExpertiseAreas {
				out = append(out, Statement{Query: mergeExpertise, Params: map[string]any{"id": r.ID, "name": area}})
			}
		case *schema.Document:
			if r.SourceID != "" && r.SourceID != r.ID {
				out = append(out, Statement{Query: mergeSource, Params: map[string]any{
					"id":           r.ID,
					"source_id":    r.SourceID,
					"source_type":  string(r.SourceType),
					"chunk_index":  r.ChunkIndex,
					"total_chunks": r.TotalChunks,
				}})
			}
		}
	}
	return out
}
