package api

import (
	"github.com/glucolog-org/coach/store"
	"github.com/glucolog-org/coach/uploads"
)

func NewUploadDto(upload *uploads.Upload) UploadDto {
	dto := UploadDto{
		UserId:      upload.UserId,
		Filename:    upload.Filename,
		ReportCode:  upload.ReportCode,
		Headers:     upload.Headers,
		Roles:       upload.Roles,
		Readings:    len(upload.Readings),
		DroppedRows: upload.DroppedRows,
		CreatedTime: upload.CreatedTime,
	}
	if upload.Id != nil {
		dto.Id = upload.Id.Hex()
	}
	return dto
}

func NewUploadDtos(list []*uploads.Upload) []UploadDto {
	dtos := make([]UploadDto, 0, len(list))
	for _, upload := range list {
		dtos = append(dtos, NewUploadDto(upload))
	}
	return dtos
}

func pagination(offset *Offset, limit *Limit) store.Pagination {
	page := store.DefaultPagination()
	if offset != nil {
		page.Offset = *offset
	}
	if limit != nil {
		page.Limit = *limit
	}
	return page
}
