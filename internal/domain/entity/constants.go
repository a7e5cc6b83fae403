package entity

// MonthLayout is the time layout of FeeVoucher.Month
const MonthLayout = "2006-01"

// Storage folders for archived files
const (
	FolderImports  = "imports"
	FolderVouchers = "vouchers"
)
