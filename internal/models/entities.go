package models

import (
	"time"

	"github.com/otcheredev/dicomweb-store/internal/dbtypes"
)

// UID is the bounded string used for every DICOM identifier column.
type UID = dbtypes.BoundedString[dbtypes.Len64]

// Patient is one row of patient_info, keyed by (tenant_id, patient_id).
type Patient struct {
	TenantID  UID `gorm:"type:varchar(64);primaryKey" json:"tenant_id"`
	PatientID UID `gorm:"type:varchar(64);primaryKey" json:"patient_id"`

	PatientName      *string    `gorm:"type:varchar(128)" json:"patient_name"`
	PatientSex       *string    `gorm:"type:varchar(16)" json:"patient_sex"`
	PatientBirthDate *time.Time `gorm:"type:date" json:"patient_birth_date"`
	PatientBirthTime *string    `gorm:"type:varchar(16)" json:"patient_birth_time"`
	// Opaque demographic text, stored exactly as received.
	EthnicGroup *string `gorm:"type:varchar(64)" json:"ethnic_group"`

	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}

func (Patient) TableName() string { return "patient_info" }

// Study is one row of study_info, keyed by (tenant_id, study_instance_uid).
type Study struct {
	TenantID        UID `gorm:"type:varchar(64);primaryKey" json:"tenant_id"`
	StudyInstanceUID UID `gorm:"type:varchar(64);primaryKey;column:study_instance_uid" json:"study_instance_uid"`
	PatientID       UID `gorm:"type:varchar(64);index" json:"patient_id"`

	PatientAge               *string  `gorm:"type:varchar(16)" json:"patient_age"`
	PatientSize              *float64 `json:"patient_size"`
	PatientWeight            *float64 `json:"patient_weight"`
	MedicalAlerts            *string  `gorm:"type:varchar(1024)" json:"medical_alerts"`
	Allergies                *string  `gorm:"type:varchar(1024)" json:"allergies"`
	PregnancyStatus          *string  `gorm:"type:varchar(16)" json:"pregnancy_status"`
	Occupation               *string  `gorm:"type:varchar(128)" json:"occupation"`
	AdditionalPatientHistory *string  `gorm:"type:text" json:"additional_patient_history"`
	PatientComments          *string  `gorm:"type:text" json:"patient_comments"`

	StudyDate              *time.Time `gorm:"type:date" json:"study_date"`
	StudyTime              *string    `gorm:"type:varchar(16)" json:"study_time"`
	AccessionNumber        *string    `gorm:"type:varchar(64)" json:"accession_number"`
	StudyID                *string    `gorm:"type:varchar(64)" json:"study_id"`
	StudyDescription       *string    `gorm:"type:varchar(512)" json:"study_description"`
	ReferringPhysicianName *string    `gorm:"type:varchar(128)" json:"referring_physician_name"`
	AdmissionID            *string    `gorm:"type:varchar(64)" json:"admission_id"`
	PerformingPhysicianName *string   `gorm:"type:varchar(128)" json:"performing_physician_name"`
	ProcedureCodeSequence  *string    `gorm:"type:varchar(256)" json:"procedure_code_sequence"`

	ReceivedInstances int32 `json:"received_instances"`
	SpaceSize         int64 `json:"space_size"`

	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}

func (Study) TableName() string { return "study_info" }

// Series is one row of series_info, keyed by (tenant_id, series_instance_uid).
type Series struct {
	TenantID          UID `gorm:"type:varchar(64);primaryKey" json:"tenant_id"`
	SeriesInstanceUID UID `gorm:"type:varchar(64);primaryKey;column:series_instance_uid" json:"series_instance_uid"`
	StudyInstanceUID  UID `gorm:"type:varchar(64);index;column:study_instance_uid" json:"study_instance_uid"`
	PatientID         UID `gorm:"type:varchar(64)" json:"patient_id"`

	Modality                        string     `gorm:"type:varchar(16);not null" json:"modality"`
	SeriesNumber                    *int32     `json:"series_number"`
	SeriesDate                      *time.Time `gorm:"type:date" json:"series_date"`
	SeriesTime                      *string    `gorm:"type:varchar(16)" json:"series_time"`
	SeriesDescription               *string    `gorm:"type:varchar(512)" json:"series_description"`
	BodyPartExamined                *string    `gorm:"type:varchar(64)" json:"body_part_examined"`
	ProtocolName                    *string    `gorm:"type:varchar(128)" json:"protocol_name"`
	AcquisitionNumber               *int32     `json:"acquisition_number"`
	AcquisitionDate                 *time.Time `gorm:"type:date" json:"acquisition_date"`
	AcquisitionTime                 *string    `gorm:"type:varchar(16)" json:"acquisition_time"`
	PerformingPhysicianName         *string    `gorm:"type:varchar(128)" json:"performing_physician_name"`
	OperatorsName                   *string    `gorm:"type:varchar(128)" json:"operators_name"`
	NumberOfSeriesRelatedInstances  *int32     `json:"number_of_series_related_instances"`

	ReceivedInstances int32 `json:"received_instances"`
	SpaceSize         int64 `json:"space_size"`

	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}

func (Series) TableName() string { return "series_info" }

// Image is one row of image_info, keyed by (tenant_id, sop_instance_uid).
type Image struct {
	TenantID          UID `gorm:"type:varchar(64);primaryKey" json:"tenant_id"`
	SOPInstanceUID    UID `gorm:"type:varchar(64);primaryKey;column:sop_instance_uid" json:"sop_instance_uid"`
	SeriesInstanceUID UID `gorm:"type:varchar(64);index;column:series_instance_uid" json:"series_instance_uid"`
	StudyInstanceUID  UID `gorm:"type:varchar(64);index;column:study_instance_uid" json:"study_instance_uid"`
	PatientID         UID `gorm:"type:varchar(64)" json:"patient_id"`

	InstanceNumber      *int32     `json:"instance_number"`
	ImageComments       *string    `gorm:"type:varchar(1024)" json:"image_comments"`
	ContentDate         *time.Time `gorm:"type:date" json:"content_date"`
	ContentTime         *string    `gorm:"type:varchar(16)" json:"content_time"`
	AcquisitionDate     *time.Time `gorm:"type:date" json:"acquisition_date"`
	AcquisitionTime     *string    `gorm:"type:varchar(16)" json:"acquisition_time"`
	AcquisitionDateTime *time.Time `json:"acquisition_date_time"`
	ImageType           *string    `gorm:"type:varchar(128)" json:"image_type"`

	ImageOrientationPatient *string  `gorm:"type:varchar(128)" json:"image_orientation_patient"`
	ImagePositionPatient    *string  `gorm:"type:varchar(128)" json:"image_position_patient"`
	SliceThickness          *float64 `json:"slice_thickness"`
	SpacingBetweenSlices    *float64 `json:"spacing_between_slices"`
	SliceLocation           *float64 `json:"slice_location"`

	SamplesPerPixel           *int32   `json:"samples_per_pixel"`
	PhotometricInterpretation *string  `gorm:"type:varchar(32)" json:"photometric_interpretation"`
	Rows                      *int32   `gorm:"column:width" json:"width"`
	Columns                   *int32   `json:"columns"`
	BitsAllocated             *int32   `json:"bits_allocated"`
	BitsStored                *int32   `json:"bits_stored"`
	HighBit                   *int32   `json:"high_bit"`
	PixelRepresentation       *int32   `json:"pixel_representation"`
	RescaleIntercept          *float64 `json:"rescale_intercept"`
	RescaleSlope              *float64 `json:"rescale_slope"`
	RescaleType               *string  `gorm:"type:varchar(32)" json:"rescale_type"`
	NumberOfFrames            int32    `json:"number_of_frames"`

	AcquisitionDeviceProcessingDescription *string `gorm:"type:varchar(256)" json:"acquisition_device_processing_description"`
	AcquisitionDeviceProcessingCode        *string `gorm:"type:varchar(64)" json:"acquisition_device_processing_code"`
	DeviceSerialNumber                     *string `gorm:"type:varchar(64)" json:"device_serial_number"`
	SoftwareVersions                       *string `gorm:"type:varchar(128)" json:"software_versions"`

	TransferSyntaxUID UID     `gorm:"type:varchar(64);not null;column:transfer_syntax_uid" json:"transfer_syntax_uid"`
	SOPClassUID       UID     `gorm:"type:varchar(64);not null;column:sop_class_uid" json:"sop_class_uid"`
	PixelDataLocation *string `gorm:"type:varchar(512)" json:"pixel_data_location"`
	ThumbnailLocation *string `gorm:"type:varchar(512)" json:"thumbnail_location"`
	ImageStatus       *string `gorm:"type:varchar(32)" json:"image_status"`
	SpaceSize         int64   `json:"space_size"`

	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}

func (Image) TableName() string { return "image_info" }
