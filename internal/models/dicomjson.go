package models

import "time"

// TagValue is one attribute of a DICOM JSON object (PS3.18 annex F form).
type TagValue struct {
	VR    string `json:"vr"`
	Value []any  `json:"Value,omitempty"`
}

// DicomJSON is a single DICOM JSON object keyed by 8-digit tag.
type DicomJSON map[string]TagValue

// Well-known tags used by the metadata responses.
const (
	TagSOPClassUID               = "00080016"
	TagSOPInstanceUID            = "00080018"
	TagStudyDate                 = "00080020"
	TagSeriesDate                = "00080021"
	TagStudyTime                 = "00080030"
	TagSeriesTime                = "00080031"
	TagAccessionNumber           = "00080050"
	TagModality                  = "00080060"
	TagStudyDescription          = "00081030"
	TagSeriesDescription         = "0008103E"
	TagPatientName               = "00100010"
	TagPatientID                 = "00100020"
	TagPatientBirthDate          = "00100030"
	TagPatientSex                = "00100040"
	TagPatientAge                = "00101010"
	TagPatientSize               = "00101020"
	TagPatientWeight             = "00101030"
	TagBodyPartExamined          = "00180015"
	TagProtocolName              = "00181030"
	TagStudyInstanceUID          = "0020000D"
	TagSeriesInstanceUID         = "0020000E"
	TagStudyID                   = "00200010"
	TagSeriesNumber              = "00200011"
	TagInstanceNumber            = "00200013"
	TagNumberOfFrames            = "00280008"
	TagTransferSyntaxUID         = "00020010"
	TagSeriesRelatedInstances    = "00201209"
)

func put(obj DicomJSON, tag, vr string, v any) {
	obj[tag] = TagValue{VR: vr, Value: []any{v}}
}

func putOptStr(obj DicomJSON, tag, vr string, v *string) {
	if v != nil && *v != "" {
		put(obj, tag, vr, *v)
	}
}

func putOptInt(obj DicomJSON, tag, vr string, v *int32) {
	if v != nil {
		put(obj, tag, vr, *v)
	}
}

func putOptFloat(obj DicomJSON, tag, vr string, v *float64) {
	if v != nil {
		put(obj, tag, vr, *v)
	}
}

func putOptDate(obj DicomJSON, tag string, v *time.Time) {
	if v != nil {
		put(obj, tag, "DA", v.Format("20060102"))
	}
}

// ToDicomJSON renders the state record as one application/dicom+json object.
// Absent attributes are omitted rather than emitted with empty Value lists.
func (m *StateMeta) ToDicomJSON() DicomJSON {
	obj := DicomJSON{}

	put(obj, TagStudyInstanceUID, "UI", m.StudyUID.String())
	put(obj, TagSeriesInstanceUID, "UI", m.SeriesUID.String())
	put(obj, TagSOPInstanceUID, "UI", m.SopUID.String())
	put(obj, TagSOPClassUID, "UI", m.SopClassUID.String())
	put(obj, TagTransferSyntaxUID, "UI", m.TransferSyntaxUID.String())
	put(obj, TagPatientID, "LO", m.PatientID.String())

	if m.PatientName != nil && *m.PatientName != "" {
		obj[TagPatientName] = TagValue{VR: "PN", Value: []any{map[string]any{"Alphabetic": *m.PatientName}}}
	}
	putOptStr(obj, TagPatientSex, "CS", m.PatientSex)
	putOptDate(obj, TagPatientBirthDate, m.PatientBirthDate)
	putOptStr(obj, TagPatientAge, "AS", m.PatientAge)
	putOptFloat(obj, TagPatientSize, "DS", m.PatientSize)
	putOptFloat(obj, TagPatientWeight, "DS", m.PatientWeight)

	putOptDate(obj, TagStudyDate, m.StudyDate)
	putOptStr(obj, TagStudyTime, "TM", m.StudyTime)
	putOptStr(obj, TagAccessionNumber, "SH", m.AccessionNumber)
	putOptStr(obj, TagStudyID, "SH", m.StudyID)
	putOptStr(obj, TagStudyDescription, "LO", m.StudyDescription)

	putOptStr(obj, TagModality, "CS", m.Modality)
	putOptInt(obj, TagSeriesNumber, "IS", m.SeriesNumber)
	putOptDate(obj, TagSeriesDate, m.SeriesDate)
	putOptStr(obj, TagSeriesTime, "TM", m.SeriesTime)
	putOptStr(obj, TagSeriesDescription, "LO", m.SeriesDescription)
	putOptInt(obj, TagSeriesRelatedInstances, "IS", m.SeriesRelatedInstances)
	putOptStr(obj, TagBodyPartExamined, "CS", m.BodyPartExamined)
	putOptStr(obj, TagProtocolName, "LO", m.ProtocolName)

	putOptInt(obj, TagInstanceNumber, "IS", m.InstanceNumber)
	if m.NumberOfFrames > 0 {
		put(obj, TagNumberOfFrames, "IS", m.NumberOfFrames)
	}

	return obj
}
