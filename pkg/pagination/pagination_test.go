package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"默认值", "", 1, 10},
		{"正常参数", "page=3&page_size=20", 3, 20},
		{"非法页码回落", "page=abc", 1, 10},
		{"负数页码回落", "page=-1", 1, 10},
		{"超出上限截断", "page_size=500", 1, 100},
		{"零页大小回落", "page_size=0", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := ParsePageParams(contextWithQuery(tt.query))
			if params.Page != tt.wantPage || params.PageSize != tt.wantPageSize {
				t.Errorf("got (%d, %d), want (%d, %d)", params.Page, params.PageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestParseSortParam(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"无参数用默认", "", "created_at DESC"},
		{"白名单内升序", "sort=username", "username ASC"},
		{"白名单内降序", "sort=-username", "username DESC"},
		{"白名单外回落", "sort=password_hash", "created_at DESC"},
		{"注入尝试回落", "sort=username;DROP+TABLE", "created_at DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSortParam(contextWithQuery(tt.query), "created_at DESC", "username", "created_at")
			if got != tt.want {
				t.Errorf("ParseSortParam = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(2, 10, 35)
	if info.TotalPages != 4 {
		t.Errorf("TotalPages = %d, want 4", info.TotalPages)
	}
	if !info.HasNext || !info.HasPrev {
		t.Errorf("HasNext/HasPrev = %v/%v, want true/true", info.HasNext, info.HasPrev)
	}

	first := NewPageInfo(1, 10, 5)
	if first.TotalPages != 1 || first.HasNext || first.HasPrev {
		t.Errorf("单页数据分页信息错误: %+v", first)
	}
}

func TestGetOffsetAndLimit(t *testing.T) {
	p := &PageParams{Page: 3, PageSize: 15}
	if p.GetOffset() != 30 {
		t.Errorf("GetOffset = %d, want 30", p.GetOffset())
	}
	if p.GetLimit() != 15 {
		t.Errorf("GetLimit = %d, want 15", p.GetLimit())
	}
}
