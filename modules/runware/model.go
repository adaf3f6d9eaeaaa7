package runware

// Lora - 호출자가 지정하는 LoRA (Weight가 nil이면 1)
type Lora struct {
	Model  string   `json:"model"`
	Weight *float64 `json:"weight,omitempty"`
}

// LoraSelection - LoRA 지정 상태 (미지정 / 명시적 없음 / 명시적 목록)
type LoraSelection struct {
	explicit bool
	items    []Lora
}

// DefaultLoras - 미지정 (모델 계열 기본값 사용)
func DefaultLoras() LoraSelection {
	return LoraSelection{}
}

// NoLoras - 명시적으로 LoRA 없음
func NoLoras() LoraSelection {
	return LoraSelection{explicit: true}
}

// WithLoras - 명시적 LoRA 목록 (빈 목록이면 NoLoras와 동일)
func WithLoras(loras ...Lora) LoraSelection {
	return LoraSelection{explicit: true, items: append([]Lora(nil), loras...)}
}

// IsExplicit - 호출자가 직접 지정했는지 여부
func (s LoraSelection) IsExplicit() bool {
	return s.explicit
}

// Params - 이미지 생성 파라미터 (0/빈 값/nil은 기본값 사용, Steps/CFGScale은 nil일 때만)
type Params struct {
	Prompt          string
	Model           string
	Width           int
	Height          int
	Steps           *int
	CFGScale        *float64
	Scheduler       string
	NegativePrompt  string
	IncludeCost     *bool
	CheckNSFW       bool
	Loras           LoraSelection
	OutputFormat    string
	ReferenceImages []string
}

// LoraEntry - 요청 페이로드의 LoRA 항목
type LoraEntry struct {
	Model  string  `json:"model"`
	Weight float64 `json:"weight"`
}

// TaskDescriptor - Runware imageInference 태스크
type TaskDescriptor struct {
	TaskType        string      `json:"taskType"`
	TaskUUID        string      `json:"taskUUID"`
	Model           string      `json:"model"`
	NumberResults   int         `json:"numberResults"`
	Width           int         `json:"width"`
	Height          int         `json:"height"`
	Steps           int         `json:"steps"`
	OutputType      string      `json:"outputType"`
	OutputFormat    string      `json:"outputFormat"`
	IncludeCost     bool        `json:"includeCost"`
	CheckNSFW       bool        `json:"checkNSFW"`
	CFGScale        float64     `json:"CFGScale"`
	Scheduler       string      `json:"scheduler"`
	PositivePrompt  string      `json:"positivePrompt"`
	NegativePrompt  string      `json:"negativePrompt,omitempty"`
	ReferenceImages []string    `json:"referenceImages,omitempty"`
	Lora            []LoraEntry `json:"lora,omitempty"`
}

// Result - 원본 응답 JSON과 추출된 이미지 바이트 (없으면 nil)
type Result struct {
	Response   map[string]any
	ImageBytes []byte
}
