package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Upsert clauses per table. Conflict columns are the primary keys; the
// update lists never touch created_time, and counter columns are summed so
// they only ever grow.

func upsertPatient() clause.Expression {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "patient_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"patient_name", "patient_sex", "patient_birth_date", "updated_time",
		}),
	}
}

func upsertStudy(tx *gorm.DB) clause.Expression {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "study_instance_uid"}},
		DoUpdates: clause.Assignments(map[string]any{
			"received_instances": counterAdd(tx, "study_info", "received_instances"),
			"space_size":         counterAdd(tx, "study_info", "space_size"),
			"updated_time":       incomingColumn(tx, "updated_time"),
		}),
	}
}

func upsertSeries(tx *gorm.DB) clause.Expression {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "series_instance_uid"}},
		DoUpdates: clause.Assignments(map[string]any{
			"received_instances": counterAdd(tx, "series_info", "received_instances"),
			"space_size":         counterAdd(tx, "series_info", "space_size"),
			"number_of_series_related_instances": incomingColumn(tx, "number_of_series_related_instances"),
			"updated_time":                       incomingColumn(tx, "updated_time"),
		}),
	}
}

func upsertImage() clause.Expression {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "sop_instance_uid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"instance_number", "transfer_syntax_uid", "sop_class_uid",
			"pixel_data_location", "number_of_frames", "space_size", "updated_time",
		}),
	}
}

func upsertState() clause.Expression {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "sop_uid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"series_number", "instance_number", "transfer_syntax_uid",
			"file_path", "file_size", "number_of_frames", "json_status", "updated_time",
		}),
	}
}

func upsertJSONMeta() clause.Expression {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "study_uid"}, {Name: "series_uid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"json_status", "flag_time", "retry_times",
		}),
	}
}

// counterAdd builds "existing + incoming" for the active dialect: MySQL
// addresses the incoming row through VALUES(), Postgres through excluded.
func counterAdd(tx *gorm.DB, table, column string) any {
	if tx.Dialector.Name() == "postgres" {
		return gorm.Expr(table + "." + column + " + excluded." + column)
	}
	return gorm.Expr(column + " + VALUES(" + column + ")")
}

// incomingColumn references the value of the row that caused the conflict.
func incomingColumn(tx *gorm.DB, column string) any {
	if tx.Dialector.Name() == "postgres" {
		return gorm.Expr("excluded." + column)
	}
	return gorm.Expr("VALUES(" + column + ")")
}
