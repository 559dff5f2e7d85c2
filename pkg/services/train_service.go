package services

import (
	"context"
	"errors"
	"io"
	"log"

	"railway/pkg/apperr"
	"railway/pkg/media"
	"railway/pkg/models"
	"railway/pkg/query"
	"railway/pkg/repository"
)

type CrewService interface {
	List(ctx context.Context, spec query.Spec) ([]models.Crew, int, error)
	Get(ctx context.Context, id int) (models.Crew, error)
	Create(ctx context.Context, c models.Crew) (models.Crew, error)
	Update(ctx context.Context, id int, c models.Crew) (models.Crew, error)
	Patch(ctx context.Context, id int, p models.CrewPatch) (models.Crew, error)
	Delete(ctx context.Context, id int) error
}

type TrainTypeService interface {
	List(ctx context.Context, spec query.Spec) ([]models.TrainType, int, error)
	Get(ctx context.Context, id int) (models.TrainType, error)
	Create(ctx context.Context, tt models.TrainType) (models.TrainType, error)
	Update(ctx context.Context, id int, tt models.TrainType) (models.TrainType, error)
	Patch(ctx context.Context, id int, p models.TrainTypePatch) (models.TrainType, error)
	Delete(ctx context.Context, id int) error
}

type TrainService interface {
	List(ctx context.Context, spec query.Spec) ([]models.TrainList, int, error)
	Get(ctx context.Context, id int) (models.TrainDetail, error)
	Create(ctx context.Context, t models.Train) (models.Train, error)
	Update(ctx context.Context, id int, t models.Train) (models.Train, error)
	Patch(ctx context.Context, id int, p models.TrainPatch) (models.Train, error)
	Delete(ctx context.Context, id int) error
	UploadImage(ctx context.Context, id int, filename string, r io.Reader) (models.Train, error)
}

// ImageStore keeps uploaded files.
type ImageStore interface {
	Save(rel string, r io.Reader) error
	Remove(rel string) error
	URL(rel string) string
}

type crewService struct {
	repo repository.CrewRepository
}

func NewCrewService(repo repository.CrewRepository) CrewService {
	return &crewService{repo: repo}
}

func (s *crewService) List(ctx context.Context, spec query.Spec) ([]models.Crew, int, error) {
	return s.repo.List(ctx, spec)
}

func (s *crewService) Get(ctx context.Context, id int) (models.Crew, error) {
	return s.repo.Get(ctx, id)
}

func (s *crewService) Create(ctx context.Context, c models.Crew) (models.Crew, error) {
	if err := Validate(c); err != nil {
		return c, err
	}
	return s.repo.Create(ctx, c)
}

func (s *crewService) Update(ctx context.Context, id int, c models.Crew) (models.Crew, error) {
	c.ID = id
	if err := Validate(c); err != nil {
		return c, err
	}
	return s.repo.Update(ctx, c)
}

func (s *crewService) Patch(ctx context.Context, id int, p models.CrewPatch) (models.Crew, error) {
	if err := Validate(p); err != nil {
		return models.Crew{}, err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return c, err
	}
	p.Apply(&c)
	return s.Update(ctx, id, c)
}

func (s *crewService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

type trainTypeService struct {
	repo repository.TrainTypeRepository
}

func NewTrainTypeService(repo repository.TrainTypeRepository) TrainTypeService {
	return &trainTypeService{repo: repo}
}

func (s *trainTypeService) List(ctx context.Context, spec query.Spec) ([]models.TrainType, int, error) {
	return s.repo.List(ctx, spec)
}

func (s *trainTypeService) Get(ctx context.Context, id int) (models.TrainType, error) {
	return s.repo.Get(ctx, id)
}

func (s *trainTypeService) Create(ctx context.Context, tt models.TrainType) (models.TrainType, error) {
	if err := Validate(tt); err != nil {
		return tt, err
	}
	return s.repo.Create(ctx, tt)
}

func (s *trainTypeService) Update(ctx context.Context, id int, tt models.TrainType) (models.TrainType, error) {
	tt.ID = id
	if err := Validate(tt); err != nil {
		return tt, err
	}
	return s.repo.Update(ctx, tt)
}

func (s *trainTypeService) Patch(ctx context.Context, id int, p models.TrainTypePatch) (models.TrainType, error) {
	if err := Validate(p); err != nil {
		return models.TrainType{}, err
	}
	tt, err := s.repo.Get(ctx, id)
	if err != nil {
		return tt, err
	}
	p.Apply(&tt)
	return s.Update(ctx, id, tt)
}

func (s *trainTypeService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

type trainService struct {
	trains repository.TrainRepository
	types  repository.TrainTypeRepository
	images ImageStore
}

func NewTrainService(trains repository.TrainRepository, types repository.TrainTypeRepository, images ImageStore) TrainService {
	return &trainService{trains: trains, types: types, images: images}
}

func (s *trainService) List(ctx context.Context, spec query.Spec) ([]models.TrainList, int, error) {
	return s.trains.List(ctx, spec)
}

func (s *trainService) Get(ctx context.Context, id int) (models.TrainDetail, error) {
	return s.trains.Get(ctx, id)
}

func (s *trainService) check(ctx context.Context, t models.Train) error {
	if err := Validate(t); err != nil {
		return err
	}
	if _, err := s.types.Get(ctx, t.TrainType); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return doesNotExist("train_type", t.TrainType)
		}
		return err
	}
	return nil
}

func (s *trainService) Create(ctx context.Context, t models.Train) (models.Train, error) {
	t.Image = nil
	if err := s.check(ctx, t); err != nil {
		return t, err
	}
	return s.trains.Create(ctx, t)
}

func (s *trainService) Update(ctx context.Context, id int, t models.Train) (models.Train, error) {
	t.ID = id
	if err := s.check(ctx, t); err != nil {
		return t, err
	}
	return s.trains.Update(ctx, t)
}

func (s *trainService) Patch(ctx context.Context, id int, p models.TrainPatch) (models.Train, error) {
	if err := Validate(p); err != nil {
		return models.Train{}, err
	}
	d, err := s.trains.Get(ctx, id)
	if err != nil {
		return models.Train{}, err
	}
	t := d.Write()
	p.Apply(&t)
	return s.Update(ctx, id, t)
}

func (s *trainService) Delete(ctx context.Context, id int) error {
	d, err := s.trains.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.trains.Delete(ctx, id); err != nil {
		return err
	}
	if d.Image != nil {
		if err := s.images.Remove(*d.Image); err != nil {
			log.Printf("[MEDIA] remove %s: %v", *d.Image, err)
		}
	}
	return nil
}

// UploadImage stores the file and points the train at it, replacing any
// previous image.
func (s *trainService) UploadImage(ctx context.Context, id int, filename string, r io.Reader) (models.Train, error) {
	if !media.AllowedImage(filename) {
		return models.Train{}, apperr.Invalid("image", "upload a valid image")
	}

	d, err := s.trains.Get(ctx, id)
	if err != nil {
		return models.Train{}, err
	}

	body, err := media.SniffImage(r)
	if errors.Is(err, media.ErrNotImage) {
		return models.Train{}, apperr.Invalid("image", "upload a valid image")
	}
	if err != nil {
		return models.Train{}, err
	}

	rel := media.TrainImagePath(d.Name, filename)
	if err := s.images.Save(rel, body); err != nil {
		return models.Train{}, err
	}

	url := s.images.URL(rel)
	if err := s.trains.SetImage(ctx, id, url); err != nil {
		s.images.Remove(rel)
		return models.Train{}, err
	}

	if d.Image != nil {
		if err := s.images.Remove(*d.Image); err != nil {
			log.Printf("[MEDIA] remove %s: %v", *d.Image, err)
		}
	}

	t := d.Write()
	t.Image = &url
	return t, nil
}
