package kyc

import (
	"fmt"
	"time"
)

type NotificationMode string

const (
	NotifySMS      NotificationMode = "SMS"
	NotifyWhatsApp NotificationMode = "WHATSAPP"
	NotifyAll      NotificationMode = "ALL"
)

// Signer is an additional signer on a KYC request.
type Signer struct {
	Identifier    string `json:"identifier" validate:"required,email"`
	Reason        string `json:"reason,omitempty" validate:"max=250"`
	SignType      string `json:"sign_type,omitempty" validate:"omitempty,oneof=aadhaar dsc electronic external external_sign aadhaar_with_dependents electronic_with_dependents document_review"`
	SignatureMode string `json:"signature_mode,omitempty" validate:"omitempty,oneof=otp slate kyc otp_certified slate_certified esign_3"`
	Name          string `json:"name" validate:"required,max=100"`
	SignerTag     string `json:"signer_tag,omitempty"`
}

type SignAddon struct {
	Type              string `json:"type" validate:"required,eq=geo_location"`
	PerformEnrichment bool   `json:"performEnrichment"`
	Optional          bool   `json:"optional"`
}

type EStampRequest struct {
	Tags        map[string]int `json:"tags,omitempty"`
	NoteContent string         `json:"note_content" validate:"max=250"`
	NoteOnPage  string         `json:"note_on_page,omitempty" validate:"omitempty,oneof=first last all custom"`
	SignOnPage  string         `json:"sign_on_page,omitempty" validate:"omitempty,oneof=first last all custom"`
}

// CreateKYCRequest creates a KYC request from a dashboard template.
type CreateKYCRequest struct {
	CustomerIdentifier           string                       `json:"customer_identifier" validate:"required"`
	NotifyCustomer               bool                         `json:"notify_customer"`
	CustomerNotificationMode     NotificationMode             `json:"customer_notification_mode,omitempty" validate:"omitempty,oneof=SMS WHATSAPP ALL"`
	CustomerName                 string                       `json:"customer_name" validate:"required,max=100"`
	ReferenceID                  string                       `json:"reference_id" validate:"required"`
	TransactionID                string                       `json:"transaction_id" validate:"required"`
	TemplateName                 string                       `json:"template_name" validate:"required,max=100"`
	PresetValues                 map[string]string            `json:"preset_values,omitempty"`
	DigilockerDocumentAttributes map[string]map[string]string `json:"digilocker_document_attributes,omitempty"`
	ExpireInDays                 int                          `json:"expire_in_days,omitempty" validate:"omitempty,min=1,max=90"`
	Message                      string                       `json:"message" validate:"required"`
	Reminder                     []int                        `json:"reminder,omitempty"`
	OtherSigners                 []Signer                     `json:"other_signers,omitempty" validate:"dive"`
	SigningAddons                []SignAddon                  `json:"signing_addons,omitempty" validate:"dive"`
	EStampRequest                *EStampRequest               `json:"estamp_request,omitempty"`
	GenerateAccessToken          bool                         `json:"generate_access_token"`
	RPDConfigID                  string                       `json:"rpd_config_id,omitempty"`
	CollectionAmount             string                       `json:"collection_amount,omitempty"`
	EStampTags                   map[string]int               `json:"estamp_tags,omitempty"`
}

// withDefaults fills the values Digio assumes when a field is omitted.
func (r CreateKYCRequest) withDefaults() CreateKYCRequest {
	if r.CustomerNotificationMode == "" {
		r.CustomerNotificationMode = NotifySMS
	}
	if r.ExpireInDays == 0 {
		r.ExpireInDays = 10
	}
	return r
}

type AdditionalValidation struct {
	Type                 string            `json:"type,omitempty"`
	ValidationAttributes map[string]string `json:"validation_attributes,omitempty"`
	MatchResult          string            `json:"match_result,omitempty"`
	Confidence           float64           `json:"confidence,omitempty"`
}

type ActionDetails struct {
	ID                 string                          `json:"id"`
	StepRequestID      string                          `json:"step_request_id,omitempty"`
	ActionRef          string                          `json:"action_ref,omitempty"`
	Type               string                          `json:"type,omitempty"`
	Status             string                          `json:"status,omitempty"`
	FileID             string                          `json:"file_id,omitempty"`
	SubFileID          string                          `json:"sub_file_id,omitempty"`
	ExecutionRequestID string                          `json:"execution_request_id,omitempty"`
	ValidationResult   map[string]AdditionalValidation `json:"validation_result,omitempty"`
	CompletedAt        *time.Time                      `json:"completed_at,omitempty"`
	FaceMatchObjType   string                          `json:"face_match_obj_type,omitempty"`
	FaceMatchStatus    string                          `json:"face_match_status,omitempty"`
	Method             string                          `json:"method,omitempty"`
	OTP                string                          `json:"otp,omitempty"`
	ProcessingDone     bool                            `json:"processing_done,omitempty"`
	RetryCount         int                             `json:"retry_count,omitempty"`
}

type AccessToken struct {
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	EntityID     string     `json:"entity_id,omitempty"`
	ID           string     `json:"id,omitempty"`
	ValidTill    *time.Time `json:"valid_till,omitempty"`
	WorkflowName string     `json:"workflow_name,omitempty"`
}

// KYCResponse is Digio's view of a KYC request.
type KYCResponse struct {
	ID                          string                      `json:"id"`
	CreatedAt                   time.Time                   `json:"created_at"`
	Status                      string                      `json:"status"`
	CustomerIdentifier          string                      `json:"customer_identifier"`
	Actions                     []ActionDetails             `json:"actions,omitempty"`
	ReferenceID                 string                      `json:"reference_id,omitempty"`
	TransactionID               string                      `json:"transaction_id,omitempty"`
	CustomerName                string                      `json:"customer_name,omitempty"`
	ExpireInDays                int                         `json:"expire_in_days,omitempty"`
	ReminderRegistered          bool                        `json:"reminder_registered,omitempty"`
	AccessToken                 *AccessToken                `json:"access_token,omitempty"`
	RequestDetails              map[string]string           `json:"request_details,omitempty"`
	ErrorMessages               []string                    `json:"error_messages,omitempty"`
	AutoApproved                bool                        `json:"auto_approved,omitempty"`
	AuditorName                 string                      `json:"auditor_name,omitempty"`
	AuditorIdentifier           string                      `json:"auditor_identifier,omitempty"`
	AdditionalValidations       []AdditionalValidation      `json:"additional_validations,omitempty"`
	AdditionalPluginInvocations map[string][]map[string]any `json:"additional_plugin_invocations,omitempty"`
}

type IDCardType string

const (
	PAN            IDCardType = "PAN"
	Passport       IDCardType = "PASSPORT"
	VehicleRC      IDCardType = "VEHICLE_RC"
	VoterID        IDCardType = "VOTER_ID"
	DrivingLicense IDCardType = "DRIVING_LICENSE"
)

// ParseIDCardType accepts the upper-case card type names Digio uses.
func ParseIDCardType(s string) (IDCardType, error) {
	switch t := IDCardType(s); t {
	case PAN, Passport, VehicleRC, VoterID, DrivingLicense:
		return t, nil
	}
	return "", fmt.Errorf("unknown id card type %q", s)
}

// FetchIDCardRequest looks up an identity document by number.
type FetchIDCardRequest struct {
	IDNo            string `json:"id_no" validate:"required"`
	Name            string `json:"name,omitempty"`
	DOB             string `json:"dob,omitempty"`
	FileNo          string `json:"file_no,omitempty"`
	UniqueRequestID string `json:"unique_request_id,omitempty"`
}

func (r FetchIDCardRequest) check(t IDCardType) error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if t == Passport && r.FileNo == "" {
		return fmt.Errorf("file_no is required for %s", Passport)
	}
	return nil
}

// FetchIDCardResponse carries the union of fields returned for every card
// type; only those relevant to the requested type are set.
type FetchIDCardResponse struct {
	Status  string         `json:"status,omitempty"`
	Details map[string]any `json:"details,omitempty"`

	// PAN
	PAN                  string `json:"pan,omitempty"`
	Category             string `json:"category,omitempty"`
	Remarks              string `json:"remarks,omitempty"`
	NameAsPerPANMatch    string `json:"name_as_per_pan_match,omitempty"`
	DateOfBirthMatch     string `json:"date_of_birth_match,omitempty"`
	AadhaarSeedingStatus string `json:"aadhaar_seeding_status,omitempty"`

	// VOTER_ID
	EpicNo   string `json:"epic_no,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Age      string `json:"age,omitempty"`
	RlnName  string `json:"rln_name,omitempty"`
	RlnType  string `json:"rln_type,omitempty"`
	StCode   string `json:"st_code,omitempty"`
	StName   string `json:"st_name,omitempty"`
	DistNo   string `json:"dist_no,omitempty"`
	DistName string `json:"dist_name,omitempty"`
	ACNo     string `json:"ac_no,omitempty"`
	ACName   string `json:"ac_name,omitempty"`
	PCNo     string `json:"pc_no,omitempty"`
	PCName   string `json:"pc_name,omitempty"`
	PSNo     string `json:"ps_no,omitempty"`
	PSName   string `json:"ps_name,omitempty"`
	PartNo   string `json:"part_no,omitempty"`
	PartName string `json:"part_name,omitempty"`

	// DRIVING_LICENSE
	DateOfIssue       string `json:"date_of_issue,omitempty"`
	OldNewDLNo        string `json:"old_new_dl_no,omitempty"`
	HoldersName       string `json:"holders_name,omitempty"`
	NonTransport      string `json:"non_transport,omitempty"`
	Transport         string `json:"transport,omitempty"`
	CurrentStatus     string `json:"current_status,omitempty"`
	LastTransactionAt string `json:"last_transaction_at,omitempty"`

	// VEHICLE_RC
	RegistrationNo string `json:"registration_no,omitempty"`
	MakerModel     string `json:"maker_model,omitempty"`
	ChassisNo      string `json:"chassis_no,omitempty"`
	FuelNorms      string `json:"fuel_norms,omitempty"`
	FitnessUpto    string `json:"fitness_upto,omitempty"`
	OwnerName      string `json:"owner_name,omitempty"`
	VehicleClass   string `json:"vehicle_class,omitempty"`

	// PASSPORT
	FileNumber     string `json:"file_number,omitempty"`
	GivenName      string `json:"given_name,omitempty"`
	Surname        string `json:"surname,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
}

// IDCardAnalysis is the OCR result for an uploaded card image. Its shape
// depends on the detected card type, so it is passed through untouched.
type IDCardAnalysis map[string]any
