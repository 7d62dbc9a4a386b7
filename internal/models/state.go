package models

import (
	"time"

	"github.com/otcheredev/dicomweb-store/internal/dbtypes"
)

// JSON materialization status values carried by state_meta rows.
const (
	JSONStatusPending int16 = 0
	JSONStatusOK      int16 = 1
	JSONStatusFailed  int16 = 2
)

// StateMeta is the denormalized projection of one instance across all four
// hierarchy levels. It is the canonical record exchanged between the ingest
// consumers, the cache, the retrieval engine, and the JSON worker.
type StateMeta struct {
	TenantID  UID `gorm:"type:varchar(64);primaryKey" json:"tenant_id"`
	SopUID    UID `gorm:"type:varchar(64);primaryKey;column:sop_uid" json:"sop_uid"`
	StudyUID  UID `gorm:"type:varchar(64);index;column:study_uid" json:"study_uid"`
	SeriesUID UID `gorm:"type:varchar(64);index;column:series_uid" json:"series_uid"`
	PatientID UID `gorm:"type:varchar(64)" json:"patient_id"`

	PatientName      *string    `gorm:"type:varchar(128)" json:"patient_name"`
	PatientSex       *string    `gorm:"type:varchar(16)" json:"patient_sex"`
	PatientBirthDate *time.Time `gorm:"type:date" json:"patient_birth_date"`
	PatientAge       *string    `gorm:"type:varchar(16)" json:"patient_age"`
	PatientSize      *float64   `json:"patient_size"`
	PatientWeight    *float64   `json:"patient_weight"`

	StudyDate        *time.Time `gorm:"type:date" json:"study_date"`
	StudyTime        *string    `gorm:"type:varchar(16)" json:"study_time"`
	AccessionNumber  *string    `gorm:"type:varchar(64)" json:"accession_number"`
	StudyID          *string    `gorm:"type:varchar(64)" json:"study_id"`
	StudyDescription *string    `gorm:"type:varchar(512)" json:"study_description"`

	Modality               *string `gorm:"type:varchar(16)" json:"modality"`
	SeriesNumber           *int32  `json:"series_number"`
	SeriesDate             *time.Time `gorm:"type:date" json:"series_date"`
	SeriesTime             *string `gorm:"type:varchar(16)" json:"series_time"`
	SeriesDescription      *string `gorm:"type:varchar(512)" json:"series_description"`
	SeriesRelatedInstances *int32  `json:"series_related_instances"`
	BodyPartExamined       *string `gorm:"type:varchar(64)" json:"body_part_examined"`
	ProtocolName           *string `gorm:"type:varchar(128)" json:"protocol_name"`

	InstanceNumber    *int32 `json:"instance_number"`
	TransferSyntaxUID UID    `gorm:"type:varchar(64);column:transfer_syntax_uid" json:"transfer_syntax_uid"`
	SopClassUID       UID    `gorm:"type:varchar(64);column:sop_class_uid" json:"sop_class_uid"`
	FilePath          string `gorm:"type:varchar(512)" json:"file_path"`
	FileSize          int64  `json:"file_size"`
	NumberOfFrames    int32  `json:"number_of_frames"`

	// Partition keys. study_uid_hash depends on the study UID alone;
	// series_uid_hash hashes the study UID followed by the series UID, so it
	// depends on both.
	StudyUIDHash    uint64                  `gorm:"column:study_uid_hash" json:"study_uid_hash"`
	SeriesUIDHash   uint32                  `gorm:"column:series_uid_hash" json:"series_uid_hash"`
	StudyDateOrigin dbtypes.DicomDateString `gorm:"type:char(8);column:study_date_origin" json:"study_date_origin"`

	FlagTime   *time.Time `json:"flag_time"`
	JSONStatus int16      `gorm:"column:json_status" json:"json_status"`
	RetryTimes int32      `json:"retry_times"`

	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}

func (StateMeta) TableName() string { return "state_meta" }

// JSONMeta is the json-status projection written back by the JSON worker,
// keyed by (tenant, study_uid, series_uid).
type JSONMeta struct {
	TenantID  UID `gorm:"type:varchar(64);primaryKey" json:"tenant_id"`
	StudyUID  UID `gorm:"type:varchar(64);primaryKey;column:study_uid" json:"study_uid"`
	SeriesUID UID `gorm:"type:varchar(64);primaryKey;column:series_uid" json:"series_uid"`

	StudyUIDHash    uint64                  `gorm:"column:study_uid_hash" json:"study_uid_hash"`
	SeriesUIDHash   uint32                  `gorm:"column:series_uid_hash" json:"series_uid_hash"`
	StudyDateOrigin dbtypes.DicomDateString `gorm:"type:char(8);column:study_date_origin" json:"study_date_origin"`

	FlagTime    *time.Time `json:"flag_time"`
	CreatedTime time.Time  `json:"created_time"`
	JSONStatus  int16      `gorm:"column:json_status" json:"json_status"`
	RetryTimes  int32      `json:"retry_times"`
}

func (JSONMeta) TableName() string { return "json_meta" }

// StoreMeta is the ingest-topic payload: the full four-level snapshot plus
// the file coordinates of the received object.
type StoreMeta struct {
	PatientInfo Patient `json:"patient_info"`
	StudyInfo   Study   `json:"study_info"`
	SeriesInfo  Series  `json:"series_info"`
	ImageInfo   Image   `json:"image_info"`

	TenantID          string `json:"tenant_id"`
	FilePath          string `json:"file_path"`
	FileSize          int64  `json:"file_size"`
	TransferSyntaxUID string `json:"transfer_syntax_uid"`
	NumberOfFrames    int32  `json:"number_of_frames"`
}

// ImageMeta is the image-topic payload describing a rendered frame event.
type ImageMeta struct {
	TenantID    string    `json:"tenant_id"`
	StudyUID    string    `json:"study_uid"`
	SeriesUID   string    `json:"series_uid"`
	SopUID      string    `json:"sop_uid"`
	FrameNumber int32     `json:"frame_number"`
	MediaType   string    `json:"media_type"`
	FilePath    string    `json:"file_path"`
	CreatedTime time.Time `json:"created_time"`
}
