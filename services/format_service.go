package services

import (
	"context"

	"github.com/Dosada05/tabletennis-scoring/models"
	"github.com/Dosada05/tabletennis-scoring/scoring"
)

// TeamFormatInfo is what a client needs to build a line-up for a format.
type TeamFormatInfo struct {
	Format          models.TeamFormat   `json:"format"`
	ClinchThreshold int                 `json:"clinch_threshold"`
	Team1Roles      []models.Role       `json:"team1_roles"`
	Team2Roles      []models.Role       `json:"team2_roles"`
	SubMatches      []scoring.TieLayout `json:"submatches"`
}

type FormatService interface {
	GetFormatByName(ctx context.Context, format models.TeamFormat) (*TeamFormatInfo, error)
	GetAllFormats(ctx context.Context) ([]TeamFormatInfo, error)
}

type formatService struct{}

func NewFormatService() FormatService {
	return &formatService{}
}

func (s *formatService) GetFormatByName(_ context.Context, format models.TeamFormat) (*TeamFormatInfo, error) {
	clinch, err := scoring.ClinchThreshold(format)
	if err != nil {
		return nil, err
	}
	team1, team2, err := scoring.RequiredRoles(format)
	if err != nil {
		return nil, err
	}
	layout, err := scoring.Layout(format)
	if err != nil {
		return nil, err
	}
	return &TeamFormatInfo{
		Format:          format,
		ClinchThreshold: clinch,
		Team1Roles:      team1,
		Team2Roles:      team2,
		SubMatches:      layout,
	}, nil
}

func (s *formatService) GetAllFormats(ctx context.Context) ([]TeamFormatInfo, error) {
	formats := scoring.TeamFormats()
	infos := make([]TeamFormatInfo, 0, len(formats))
	for _, f := range formats {
		info, err := s.GetFormatByName(ctx, f)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, nil
}
