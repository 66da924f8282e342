package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// ConceptsColumns holds the columns for the "concepts" table.
	ConceptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "domain_id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "slug", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeInt},
		{Name: "importance", Type: field.TypeInt},
		{Name: "prerequisites", Type: field.TypeJSON},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ConceptsTable holds the schema information for the "concepts" table.
	ConceptsTable = &schema.Table{
		Name:       "concepts",
		Columns:    ConceptsColumns,
		PrimaryKey: []*schema.Column{ConceptsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "concept_domain_id", Columns: []*schema.Column{ConceptsColumns[1]}},
		},
	}

	// ExerciseTemplatesColumns holds the columns for the "exercise_templates" table.
	ExerciseTemplatesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "title", Type: field.TypeString},
		{Name: "concept_ids", Type: field.TypeJSON},
		{Name: "difficulty", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ExerciseTemplatesTable holds the schema information for the "exercise_templates" table.
	ExerciseTemplatesTable = &schema.Table{
		Name:       "exercise_templates",
		Columns:    ExerciseTemplatesColumns,
		PrimaryKey: []*schema.Column{ExerciseTemplatesColumns[0]},
	}

	// AttemptsColumns holds the columns for the "attempts" table.
	AttemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "template_id", Type: field.TypeString},
		{Name: "variant_id", Type: field.TypeString, Default: ""},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "mode", Type: field.TypeString},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "ended_at", Type: field.TypeTime, Nullable: true},
		{Name: "status", Type: field.TypeString},
		{Name: "subtasks", Type: field.TypeJSON},
		{Name: "correct_count", Type: field.TypeInt, Default: 0},
		{Name: "subtask_count", Type: field.TypeInt, Default: 0},
		{Name: "accuracy", Type: field.TypeFloat64, Nullable: true},
	}
	// AttemptsTable holds the schema information for the "attempts" table.
	AttemptsTable = &schema.Table{
		Name:       "attempts",
		Columns:    AttemptsColumns,
		PrimaryKey: []*schema.Column{AttemptsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attempt_user_id_template_id", Columns: []*schema.Column{AttemptsColumns[1], AttemptsColumns[2]}},
		},
	}

	// BrickStatesColumns holds the columns for the "brick_states" table.
	BrickStatesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "brick_kind", Type: field.TypeString},
		{Name: "brick_id", Type: field.TypeString},
		{Name: "mastery", Type: field.TypeJSON},
		{Name: "mastery_score", Type: field.TypeInt},
		{Name: "last_interval_days", Type: field.TypeInt, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// BrickStatesTable holds the schema information for the "brick_states" table.
	BrickStatesTable = &schema.Table{
		Name:       "brick_states",
		Columns:    BrickStatesColumns,
		PrimaryKey: []*schema.Column{BrickStatesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "brickstate_user_id_brick_kind_brick_id", Unique: true, Columns: []*schema.Column{BrickStatesColumns[1], BrickStatesColumns[2], BrickStatesColumns[3]}},
		},
	}

	// SchedulerItemsColumns holds the columns for the "scheduler_items" table.
	SchedulerItemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "template_id", Type: field.TypeString},
		{Name: "variant_id", Type: field.TypeString, Default: ""},
		{Name: "concept_ids", Type: field.TypeJSON},
		{Name: "scheduled_for", Type: field.TypeTime},
		{Name: "reason", Type: field.TypeString},
		{Name: "recommended_mode", Type: field.TypeString},
		{Name: "priority", Type: field.TypeInt},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "completed_by_attempt_id", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// SchedulerItemsTable holds the schema information for the "scheduler_items" table.
	SchedulerItemsTable = &schema.Table{
		Name:       "scheduler_items",
		Columns:    SchedulerItemsColumns,
		PrimaryKey: []*schema.Column{SchedulerItemsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "scheduleritem_user_id_completed_scheduled_for", Columns: []*schema.Column{SchedulerItemsColumns[1], SchedulerItemsColumns[9], SchedulerItemsColumns[5]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ConceptsTable,
		ExerciseTemplatesTable,
		AttemptsTable,
		BrickStatesTable,
		SchedulerItemsTable,
	}
)
