package models

// Certificate is the server answer to a certificate check
// Only an eligible answer carries the certificate fields
type Certificate struct {
	Eligible          bool   `json:"eligible"`
	Reason            string `json:"reason,omitempty"`
	CertificateNumber string `json:"certificateNumber,omitempty"`
	StudentName       string `json:"studentName,omitempty"`
	CourseName        string `json:"courseName,omitempty"`
	InstructorName    string `json:"instructorName,omitempty"`
	IssueDate         string `json:"issueDate,omitempty"`
}
